package handlers

import (
	"errors"
	"net/http"

	"teamup-backend/internal/models"

	"github.com/labstack/echo/v4"
)

// httpError maps a domain error to the HTTP response the client sees.
// Anything unexpected is logged, which also reports it to Sentry.
func httpError(c echo.Context, err error) error {
	var (
		validationErr *models.ValidationError
		authzErr      *models.AuthorizationError
		transitionErr *models.InvalidTransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		return echo.NewHTTPError(http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, models.ErrSelfApplication):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, models.ErrDuplicateApplication):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &authzErr):
		return echo.NewHTTPError(http.StatusForbidden, "Only the team creator can do that")
	case errors.As(err, &transitionErr):
		return echo.NewHTTPError(http.StatusConflict, transitionErr.Error())
	case errors.Is(err, models.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}

	c.Logger().Error(err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong, please try again")
}
