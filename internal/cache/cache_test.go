package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"teamup-backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	values  map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.failGet != nil {
		return redis.NewStringResult("", f.failGet)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	n, _ := strconv.ParseInt(f.values[key], 10, 64)
	n++
	f.values[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func studyTeam(t *testing.T, id, subject string) models.Team {
	t.Helper()
	team, err := models.NewTeam(models.TeamInput{
		Name:        "Study buddies",
		Description: "exam prep",
		TeamType:    models.TeamTypeStudy,
		Subject:     subject,
		StudyLevel:  models.StudyLevelUndergraduate,
	}, "u1")
	require.NoError(t, err)
	team.ID = id
	return *team
}

func TestOpenTeamsRoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	c := NewRedisTeamCache(rdb, time.Minute)

	_, gen, ok, err := c.OpenTeams(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, gen)

	require.NoError(t, c.StoreOpenTeams(ctx, gen, []models.Team{studyTeam(t, "t1", "Linear algebra")}))
	assert.Equal(t, time.Minute, rdb.ttls[openTeamsKey(0)])

	teams, _, ok, err := c.OpenTeams(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, teams, 1)
	study, isStudy := teams[0].Details.(models.StudyDetails)
	require.True(t, isStudy)
	assert.Equal(t, "Linear algebra", study.Subject)

	require.NoError(t, c.Invalidate(ctx))
	_, gen, ok, err = c.OpenTeams(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), gen)
}

func TestFillOvertakenByInvalidateIsNotServed(t *testing.T) {
	ctx := context.Background()
	c := NewRedisTeamCache(newFakeRedis(), time.Minute)

	_, gen, ok, err := c.OpenTeams(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	// a write commits and invalidates while the reader is still loading
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.StoreOpenTeams(ctx, gen, []models.Team{}))

	_, current, ok, err := c.OpenTeams(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, gen+1, current)

	require.NoError(t, c.StoreOpenTeams(ctx, current, []models.Team{studyTeam(t, "t2", "Topology")}))
	teams, _, ok, err := c.OpenTeams(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, teams, 1)
}

func TestOpenTeamsReadError(t *testing.T) {
	rdb := newFakeRedis()
	rdb.failGet = errors.New("connection refused")
	c := NewRedisTeamCache(rdb, 0)

	assert.Equal(t, DefaultTTL, c.ttl)
	_, _, ok, err := c.OpenTeams(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}
