package handlers

import (
	"teamup-backend/internal/common"
	"teamup-backend/internal/middlewares"

	"github.com/labstack/echo/v4"
)

// RegisterAPI mounts the auth, team and application endpoints on api.
// state must have Store, Matching and JwtIssuer set.
func RegisterAPI(api *echo.Group, state *common.ServerState) {
	auth := NewAuthHandler(*state)
	teams := NewTeamHandler(*state)

	// Authentication endpoints
	api.GET("/auth/social/:provider", auth.SocialLogin)
	api.GET("/auth/social/:provider/callback", auth.SocialLoginCallback)
	api.POST("/sign-up", auth.ManualSignUp)
	api.POST("/sign-in", auth.ManualSignIn)

	// Browsing works signed in or not; the action per team depends on it
	optionalAuth := []echo.MiddlewareFunc{
		state.JwtIssuer.OptionalMiddleware(),
		middlewares.LoadUser(state.Store, state.JwtIssuer, false),
	}
	api.GET("/teams", teams.ListTeams, optionalAuth...)
	api.GET("/teams/:id", teams.GetTeam, optionalAuth...)

	// Protected API routes group
	protectedAPI := api.Group("/auth",
		state.JwtIssuer.Middleware(),
		middlewares.LoadUser(state.Store, state.JwtIssuer, true),
	)

	protectedAPI.GET("/user", auth.User)
	protectedAPI.PUT("/user", auth.UpdateUser)
	protectedAPI.POST("/sign-out", auth.SignOut)

	protectedAPI.POST("/teams", teams.CreateTeam)
	protectedAPI.GET("/teams/mine", teams.MyTeams)
	protectedAPI.PATCH("/teams/:id/status", teams.SetTeamStatus)
	protectedAPI.POST("/teams/:id/applications", teams.Apply)
	protectedAPI.GET("/teams/:id/application", teams.MyApplicationForTeam)

	protectedAPI.GET("/applications/mine", teams.MyApplications)
	protectedAPI.GET("/applications/received", teams.ReceivedApplications)
	protectedAPI.PATCH("/applications/:id", teams.DecideApplication)
}
