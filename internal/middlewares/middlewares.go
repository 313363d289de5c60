package middlewares

import (
	"context"
	"errors"
	"net/http"

	"teamup-backend/internal/common"
	"teamup-backend/internal/models"

	"github.com/labstack/echo/v4"
)

const currentUserKey = "currentUser"

type UserGetter interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// LoadUser resolves the JWT subject to a stored user and puts it on the
// context for CurrentUser. It must run after one of the issuer's JWT
// middlewares. When required is false, requests without a known user
// continue as anonymous.
func LoadUser(users UserGetter, issuer common.JWTIssuer, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := issuer.GetUserID(c)
			if err != nil {
				if required {
					return echo.NewHTTPError(http.StatusUnauthorized, "You are not authenticated")
				}
				return next(c)
			}

			user, err := users.GetUser(c.Request().Context(), userID)
			if err != nil {
				if !errors.Is(err, models.ErrNotFound) {
					c.Logger().Error(err)
					return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong, please try again")
				}
				if required {
					return echo.NewHTTPError(http.StatusUnauthorized, "You are not authenticated")
				}
				return next(c)
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user loaded by LoadUser, or nil for anonymous
// requests.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(currentUserKey).(*models.User)
	return user
}
