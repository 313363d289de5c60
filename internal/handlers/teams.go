package handlers

import (
	"net/http"

	"teamup-backend/internal/common"
	"teamup-backend/internal/matching"
	"teamup-backend/internal/middlewares"
	"teamup-backend/internal/models"

	"github.com/labstack/echo/v4"
)

type TeamHandler struct {
	common.ServerState
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ApplyRequest struct {
	Message string `json:"message"`
}

func NewTeamHandler(state common.ServerState) *TeamHandler {
	return &TeamHandler{ServerState: state}
}

// ListTeams serves the browse page: open teams narrowed by the search and
// filter query parameters, each with the caller's available action.
func (h *TeamHandler) ListTeams(c echo.Context) error {
	filter := matching.TeamFilter{
		Search: c.QueryParam("search"),
		Type:   c.QueryParam("type"),
		Status: c.QueryParam("status"),
		Paid:   c.QueryParam("paid"),
	}

	views, err := h.Matching.BrowseTeams(c.Request().Context(), filter, middlewares.CurrentUser(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, views)
}

func (h *TeamHandler) GetTeam(c echo.Context) error {
	view, err := h.Matching.ViewTeam(c.Request().Context(), c.Param("id"), middlewares.CurrentUser(c))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *TeamHandler) CreateTeam(c echo.Context) error {
	user := middlewares.CurrentUser(c)

	req := new(models.TeamInput)
	if err := bind(c, req); err != nil {
		return err
	}

	team, err := h.Matching.CreateTeam(c.Request().Context(), *req, user.ID)
	if err != nil {
		return httpError(c, err)
	}
	c.Logger().Infof("User %s created %s team %s", user.ID, team.Type(), team.ID)
	return c.JSON(http.StatusCreated, team)
}

func (h *TeamHandler) MyTeams(c echo.Context) error {
	teams, err := h.Matching.ListTeamsByCreator(c.Request().Context(), middlewares.CurrentUser(c).ID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, teams)
}

func (h *TeamHandler) SetTeamStatus(c echo.Context) error {
	req := new(StatusRequest)
	if err := bind(c, req); err != nil {
		return err
	}

	team, err := h.Matching.SetTeamStatus(c.Request().Context(), c.Param("id"),
		models.TeamStatus(req.Status), middlewares.CurrentUser(c).ID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, team)
}
