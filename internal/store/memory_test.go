package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"teamup-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickingClock() func() time.Time {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
}

func newSportsTeam(t *testing.T, name, creator string) *models.Team {
	t.Helper()
	team, err := models.NewTeam(models.TeamInput{
		Name:        name,
		Description: "weekly games",
		TeamType:    models.TeamTypeSports,
		SportType:   "football",
	}, creator)
	require.NoError(t, err)
	return team
}

func TestMemoryTeamsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.SetClock(tickingClock())

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, m.InsertTeam(ctx, newSportsTeam(t, name, "creator-1")))
	}

	teams, err := m.ListTeams(ctx, TeamQuery{Status: models.TeamStatusOpen})
	require.NoError(t, err)
	require.Len(t, teams, 3)
	assert.Equal(t, "third", teams[0].Name)
	assert.Equal(t, "second", teams[1].Name)
	assert.Equal(t, "first", teams[2].Name)
}

func TestMemoryTeamsSameTimestampKeepInsertOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	m.SetClock(func() time.Time { return fixed })

	require.NoError(t, m.InsertTeam(ctx, newSportsTeam(t, "a", "u1")))
	require.NoError(t, m.InsertTeam(ctx, newSportsTeam(t, "b", "u1")))

	teams, err := m.ListTeams(ctx, TeamQuery{})
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "b", teams[0].Name)
}

func TestMemoryListTeamsFilters(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	mine := newSportsTeam(t, "mine", "u1")
	theirs := newSportsTeam(t, "theirs", "u2")
	require.NoError(t, m.InsertTeam(ctx, mine))
	require.NoError(t, m.InsertTeam(ctx, theirs))
	_, err := m.UpdateTeamStatus(ctx, theirs.ID, models.TeamStatusClosed)
	require.NoError(t, err)

	open, err := m.ListTeams(ctx, TeamQuery{Status: models.TeamStatusOpen})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, mine.ID, open[0].ID)

	byCreator, err := m.ListTeams(ctx, TeamQuery{CreatorID: "u2"})
	require.NoError(t, err)
	require.Len(t, byCreator, 1)
	assert.Equal(t, models.TeamStatusClosed, byCreator[0].Status)

	none, err := m.ListTeams(ctx, TeamQuery{IDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryGetTeamReturnsOnlyDeclaredVariant(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	team, err := models.NewTeam(models.TeamInput{
		Name:        "flatmates",
		Description: "two rooms",
		TeamType:    models.TeamTypeHousing,
		City:        "Lisbon",
		SportType:   "tennis",
		Genre:       "jazz",
	}, "u1")
	require.NoError(t, err)
	require.NoError(t, m.InsertTeam(ctx, team))
	assert.NotEmpty(t, team.ID)
	assert.False(t, team.CreatedAt.IsZero())

	got, err := m.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	details, ok := got.Details.(models.HousingDetails)
	require.True(t, ok)
	assert.Equal(t, "Lisbon", details.City)

	in := got.Input()
	assert.Empty(t, in.SportType)
	assert.Empty(t, in.Genre)
}

func TestMemoryNotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.GetTeam(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetApplication(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.FindApplication(ctx, "team", "user")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.UpdateTeamStatus(ctx, "missing", models.TeamStatusClosed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUserEmailUnique(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.CreateUser(ctx, &models.User{Name: "Ana", Email: "Ana@Example.com"}))
	err := m.CreateUser(ctx, &models.User{Name: "Other", Email: "ana@example.com "})
	assert.ErrorIs(t, err, ErrDuplicate)

	u, err := m.GetUserByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
}

func TestMemoryApplicationUniquePerTeamAndApplicant(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	first, err := models.NewApplication("team-1", "user-1", "hi")
	require.NoError(t, err)
	require.NoError(t, m.InsertApplication(ctx, first))

	again, err := models.NewApplication("team-1", "user-1", "hi again")
	require.NoError(t, err)
	assert.ErrorIs(t, m.InsertApplication(ctx, again), ErrDuplicate)

	other, err := models.NewApplication("team-2", "user-1", "hi")
	require.NoError(t, err)
	assert.NoError(t, m.InsertApplication(ctx, other))
}

func TestMemoryConcurrentApplicationsOneWins(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app, err := models.NewApplication("team-1", "user-1", "let me in")
			if err != nil {
				return
			}
			err = m.InsertApplication(ctx, app)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrDuplicate):
				dupes++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, dupes)
}

func TestMemoryUpdateApplicationStatusCompareAndSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	app, err := models.NewApplication("team-1", "user-1", "hello")
	require.NoError(t, err)
	require.NoError(t, m.InsertApplication(ctx, app))

	decidedAt := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	updated, err := m.UpdateApplicationStatus(ctx, app.ID, models.ApplicationPending, models.ApplicationAccepted, decidedAt)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationAccepted, updated.Status)
	require.NotNil(t, updated.DecidedAt)
	assert.True(t, decidedAt.Equal(*updated.DecidedAt))

	_, err = m.UpdateApplicationStatus(ctx, app.ID, models.ApplicationPending, models.ApplicationRejected, decidedAt)
	assert.ErrorIs(t, err, ErrStale)

	stored, err := m.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationAccepted, stored.Status)
}

func TestMemoryListApplications(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.SetClock(tickingClock())

	for _, p := range []struct{ team, user string }{
		{"t1", "u1"}, {"t2", "u1"}, {"t1", "u2"}, {"t3", "u3"},
	} {
		app, err := models.NewApplication(p.team, p.user, "msg")
		require.NoError(t, err)
		require.NoError(t, m.InsertApplication(ctx, app))
	}

	byApplicant, err := m.ListApplications(ctx, ApplicationQuery{ApplicantID: "u1"})
	require.NoError(t, err)
	require.Len(t, byApplicant, 2)
	assert.Equal(t, "t2", byApplicant[0].TeamID)

	byTeams, err := m.ListApplications(ctx, ApplicationQuery{TeamIDs: []string{"t1", "t3"}})
	require.NoError(t, err)
	assert.Len(t, byTeams, 3)

	none, err := m.ListApplications(ctx, ApplicationQuery{TeamIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryTeamsDoNotShareMemoryWithCallers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	size, rent := 3, 450.0
	team, err := models.NewTeam(models.TeamInput{
		Name:        "Flat",
		Description: "two rooms",
		TeamType:    models.TeamTypeHousing,
		TeamSize:    &size,
		City:        "Porto",
		RentBudget:  &rent,
	}, "creator-1")
	require.NoError(t, err)
	require.NoError(t, m.InsertTeam(ctx, team))

	*team.Size = 99
	*team.Details.(models.HousingDetails).RentBudget = 1

	got, err := m.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Size)
	assert.Equal(t, 3, *got.Size)
	assert.Equal(t, 450.0, *got.Details.(models.HousingDetails).RentBudget)

	*got.Size = -7
	*got.Details.(models.HousingDetails).RentBudget = -1

	again, err := m.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, *again.Size)
	assert.Equal(t, 450.0, *again.Details.(models.HousingDetails).RentBudget)

	project, err := models.NewTeam(models.TeamInput{
		Name:         "Launch",
		Description:  "mvp",
		TeamType:     models.TeamTypeProjectStartup,
		SkillsNeeded: []string{"Go", "SQL"},
	}, "creator-1")
	require.NoError(t, err)
	require.NoError(t, m.InsertTeam(ctx, project))
	project.Details.(models.ProjectDetails).SkillsNeeded[0] = "COBOL"

	listed, err := m.ListTeams(ctx, TeamQuery{IDs: []string{project.ID}})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, []string{"Go", "SQL"}, listed[0].Details.(models.ProjectDetails).SkillsNeeded)
}

func TestMemoryListTeamsSkipsUnreadableRows(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.SetClock(tickingClock())

	good := newSportsTeam(t, "good", "creator-1")
	bad := newSportsTeam(t, "bad", "creator-1")
	require.NoError(t, m.InsertTeam(ctx, good))
	require.NoError(t, m.InsertTeam(ctx, bad))
	m.teams[bad.ID].rec.TeamType = "chess"

	teams, err := m.ListTeams(ctx, TeamQuery{Status: models.TeamStatusOpen})
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "good", teams[0].Name)

	_, err = m.GetTeam(ctx, bad.ID)
	assert.Error(t, err)
}
