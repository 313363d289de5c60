package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"
)

// slackProfile pulls the high resolution avatar and the job title out of
// the raw users.identity payload goth keeps for Slack logins.
func slackProfile(rawData map[string]interface{}) (avatarURL, title string) {
	raw, err := json.Marshal(rawData)
	if err != nil {
		return "", ""
	}
	if avatar := gjson.GetBytes(raw, "user.profile.image_512"); avatar.Exists() {
		avatarURL = avatar.String()
	}
	if t := gjson.GetBytes(raw, "user.profile.title"); t.Exists() {
		title = t.String()
	}
	return avatarURL, title
}

// bind decodes the request body into req and runs the struct validator.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
