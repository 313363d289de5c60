package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"teamup-backend/internal/common"
	"teamup-backend/internal/middlewares"
	"teamup-backend/internal/models"
	"teamup-backend/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

type AuthHandler struct {
	common.ServerState
}

type SignUpRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest carries the profile fields a user can change. Nil
// fields are left as they are.
type UpdateUserRequest struct {
	Name      *string  `json:"name"`
	Bio       *string  `json:"bio"`
	Location  *string  `json:"location"`
	Skills    []string `json:"skills"`
	AvatarURL *string  `json:"avatar_url" validate:"omitempty,url"`
}

func NewAuthHandler(state common.ServerState) *AuthHandler {
	return &AuthHandler{ServerState: state}
}

func (h *AuthHandler) SocialLogin(c echo.Context) error {
	provider := c.Param("provider")

	req := c.Request()
	// Set the provider in the query parameters for gothic to work
	q := req.URL.Query()
	q.Set("provider", provider)
	req.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Response(), req)
	return nil
}

func (h *AuthHandler) SocialLoginCallback(c echo.Context) error {
	gothUser, err := gothic.CompleteUserAuth(c.Response(), c.Request())
	if err != nil {
		c.Logger().Warnf("Social login failed: %v", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Social login failed")
	}

	ctx := c.Request().Context()
	isNewUser := false

	u, err := h.Store.GetUserByEmail(ctx, gothUser.Email)
	if errors.Is(err, models.ErrNotFound) {
		isNewUser = true
		u = &models.User{
			Name:      socialDisplayName(gothUser),
			Email:     gothUser.Email,
			AvatarURL: gothUser.AvatarURL,
		}
	} else if err != nil {
		return httpError(c, err)
	}

	switch c.Param("provider") {
	case "slack":
		c.Logger().Infof("Received Slack auth request")
		avatar, title := slackProfile(gothUser.RawData)
		if avatar != "" {
			u.AvatarURL = avatar
		}
		if u.Bio == "" && title != "" {
			u.Bio = title
		}
	case "google":
		c.Logger().Infof("Received Google auth request")
	}

	if isNewUser {
		err = h.Store.CreateUser(ctx, u)
	} else {
		err = h.Store.UpdateUser(ctx, u)
	}
	if err != nil {
		c.Logger().Errorf("Failed to save social user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save user")
	}

	if isNewUser {
		h.Notifications.UserSignedUp(u)
	} else {
		h.Notifications.UserSignedIn(u)
	}

	token, err := h.JwtIssuer.GenerateToken(u.ID)
	if err != nil {
		return c.String(http.StatusInternalServerError, "Failed to generate token")
	}

	// Redirect to the web app with the JWT token
	return c.Redirect(http.StatusFound, fmt.Sprintf("/login?token=%s", token))
}

func socialDisplayName(u goth.User) string {
	if u.Name != "" {
		return u.Name
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (h *AuthHandler) ManualSignUp(c echo.Context) error {
	c.Logger().Info("Received manual sign-up request")

	req := new(SignUpRequest)
	if err := bind(c, req); err != nil {
		return err
	}

	u := &models.User{
		Name:  strings.TrimSpace(req.Name),
		Email: req.Email,
	}
	if err := u.SetPassword(req.Password); err != nil {
		c.Logger().Errorf("Failed to hash password: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	err := h.Store.CreateUser(c.Request().Context(), u)
	if errors.Is(err, store.ErrDuplicate) {
		return echo.NewHTTPError(http.StatusConflict, "user with this email already exists")
	}
	if err != nil {
		c.Logger().Errorf("Failed to create user: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	h.Notifications.UserSignedUp(u)

	token, err := h.JwtIssuer.GenerateToken(u.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusCreated, map[string]string{"token": token})
}

func (h *AuthHandler) ManualSignIn(c echo.Context) error {
	c.Logger().Info("Received manual sign-in request")

	req := new(SignInRequest)
	if err := bind(c, req); err != nil {
		return err
	}

	u, err := h.Store.GetUserByEmail(c.Request().Context(), req.Email)
	if errors.Is(err, models.ErrNotFound) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return httpError(c, err)
	}

	if !u.CheckPassword(req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.JwtIssuer.GenerateToken(u.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	h.Notifications.UserSignedIn(u)

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) User(c echo.Context) error {
	return c.JSON(http.StatusOK, middlewares.CurrentUser(c))
}

func (h *AuthHandler) UpdateUser(c echo.Context) error {
	user := middlewares.CurrentUser(c)

	req := new(UpdateUserRequest)
	if err := bind(c, req); err != nil {
		return err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "name cannot be empty")
		}
		user.Name = name
	}
	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.Location != nil {
		user.Location = strings.TrimSpace(*req.Location)
	}
	if req.Skills != nil {
		user.SetSkills(req.Skills)
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	if err := h.Store.UpdateUser(c.Request().Context(), user); err != nil {
		c.Logger().Error("Failed to save to db:", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update user")
	}

	return c.JSON(http.StatusOK, user)
}

// SignOut clears the social login session. Bearer tokens are dropped by the
// client.
func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := gothic.Logout(c.Response(), c.Request()); err != nil {
		c.Logger().Warnf("Failed to clear social session: %v", err)
	}
	return c.NoContent(http.StatusNoContent)
}
