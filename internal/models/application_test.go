package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApplication(t *testing.T) {
	var verr *ValidationError

	_, err := NewApplication("t1", "", "hello")
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, verr.Field)

	_, err = NewApplication("t1", "u1", " \n ")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "message", verr.Field)

	app, err := NewApplication("t1", "u1", " hi there ")
	require.NoError(t, err)
	assert.Equal(t, ApplicationPending, app.Status)
	assert.Equal(t, "hi there", app.Message)
}

func TestApplicationDecide(t *testing.T) {
	at := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	app := &Application{Status: ApplicationPending}

	var verr *ValidationError
	assert.ErrorAs(t, app.Decide(ApplicationPending, at), &verr)
	assert.ErrorAs(t, app.Decide("maybe", at), &verr)

	require.NoError(t, app.Decide(ApplicationRejected, at))
	assert.Equal(t, ApplicationRejected, app.Status)
	assert.Equal(t, at, *app.DecidedAt)

	var terr *InvalidTransitionError
	require.ErrorAs(t, app.Decide(ApplicationAccepted, at.Add(time.Hour)), &terr)
	assert.Equal(t, ApplicationRejected, terr.From)
	assert.Equal(t, ApplicationRejected, app.Status)
	assert.Equal(t, at, *app.DecidedAt)
}

func TestUserPasswordAndDisplayName(t *testing.T) {
	u := &User{Email: "sam@example.com"}
	assert.False(t, u.CheckPassword("anything"))
	assert.Equal(t, "sam", u.GetDisplayName())

	require.NoError(t, u.SetPassword("s3cret"))
	assert.True(t, u.CheckPassword("s3cret"))
	assert.False(t, u.CheckPassword("wrong"))

	u.SetSkills([]string{"Go", " go", "Rust "})
	assert.Equal(t, []string{"Go", "Rust"}, []string(u.Skills))
}
