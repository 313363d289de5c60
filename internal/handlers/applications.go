package handlers

import (
	"net/http"

	"teamup-backend/internal/matching"
	"teamup-backend/internal/middlewares"
	"teamup-backend/internal/models"

	"github.com/labstack/echo/v4"
)

// Apply submits an application to the team in the path. Closed teams are
// refused here, before the application is built.
func (h *TeamHandler) Apply(c echo.Context) error {
	ctx := c.Request().Context()
	user := middlewares.CurrentUser(c)

	req := new(ApplyRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	// report a bad message before looking the team up
	if _, err := models.NewApplication(c.Param("id"), user.ID, req.Message); err != nil {
		return httpError(c, err)
	}

	view, err := h.Matching.ViewTeam(ctx, c.Param("id"), user)
	if err != nil {
		return httpError(c, err)
	}
	if view.Action.Kind == matching.ActionClosed {
		return echo.NewHTTPError(http.StatusConflict, "This team is no longer accepting applications")
	}

	app, err := h.Matching.ApplyToTeam(ctx, view.Team.ID, user.ID, req.Message)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, app)
}

// MyApplicationForTeam returns the caller's application to the team, or a
// null application when they have not applied.
func (h *TeamHandler) MyApplicationForTeam(c echo.Context) error {
	app, err := h.Matching.FindApplication(c.Request().Context(), c.Param("id"), middlewares.CurrentUser(c).ID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]*models.Application{"application": app})
}

func (h *TeamHandler) MyApplications(c echo.Context) error {
	apps, err := h.Matching.ListApplicationsByApplicant(c.Request().Context(), middlewares.CurrentUser(c).ID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, apps)
}

func (h *TeamHandler) ReceivedApplications(c echo.Context) error {
	apps, err := h.Matching.ListApplicationsForCreator(c.Request().Context(), middlewares.CurrentUser(c).ID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, apps)
}

// DecideApplication accepts or rejects an application to one of the
// caller's teams.
func (h *TeamHandler) DecideApplication(c echo.Context) error {
	req := new(StatusRequest)
	if err := bind(c, req); err != nil {
		return err
	}

	app, err := h.Matching.UpdateApplicationStatus(c.Request().Context(), c.Param("id"),
		models.ApplicationStatus(req.Status), middlewares.CurrentUser(c).ID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, app)
}
