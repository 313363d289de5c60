package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"teamup-backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockPostgres(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return NewPostgres(gdb), mock
}

func TestPostgresListTeamsDropsForeignColumns(t *testing.T) {
	p, mock := newMockPostgres(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "name", "description", "creator_id", "team_type", "status",
		"sport_type", "city", "created_at", "updated_at",
	}).AddRow("t1", "Sunday league", "casual football", "u1", "sports", "open",
		"football", "Lisbon", now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "teams" WHERE status = $1 ORDER BY created_at DESC`)).
		WithArgs("open").
		WillReturnRows(rows)

	teams, err := p.ListTeams(context.Background(), TeamQuery{Status: models.TeamStatusOpen})
	require.NoError(t, err)
	require.Len(t, teams, 1)

	sports, ok := teams[0].Details.(models.SportsDetails)
	require.True(t, ok)
	assert.Equal(t, "football", sports.SportType)
	assert.Empty(t, teams[0].Input().City)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListTeamsSkipsUnreadableRows(t *testing.T) {
	p, mock := newMockPostgres(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "name", "description", "creator_id", "team_type", "status", "subject", "created_at", "updated_at",
	}).
		AddRow("t2", "Chess club", "openings", "u1", "chess", "open", nil, now, now).
		AddRow("t1", "Calculus", "exam prep", "u1", "study", "open", "Maths", now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "teams" WHERE status = $1 ORDER BY created_at DESC`)).
		WithArgs("open").
		WillReturnRows(rows)

	teams, err := p.ListTeams(context.Background(), TeamQuery{Status: models.TeamStatusOpen})
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "t1", teams[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListTeamsEmptyIDsSkipsQuery(t *testing.T) {
	p, mock := newMockPostgres(t)

	teams, err := p.ListTeams(context.Background(), TeamQuery{IDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, teams)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertApplicationDuplicate(t *testing.T) {
	p, mock := newMockPostgres(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "team_applications"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	app, err := models.NewApplication("t1", "u2", "hello")
	require.NoError(t, err)
	err = p.InsertApplication(context.Background(), app)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetTeamNotFound(t *testing.T) {
	p, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "teams" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := p.GetTeam(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateApplicationStatusStale(t *testing.T) {
	p, mock := newMockPostgres(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "team_applications" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "team_applications" WHERE id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "team_id", "applicant_id", "message", "status", "created_at", "updated_at"}).
			AddRow("a1", "t1", "u2", "hello", "accepted", now, now))

	_, err := p.UpdateApplicationStatus(context.Background(), "a1",
		models.ApplicationPending, models.ApplicationRejected, now)
	assert.ErrorIs(t, err, ErrStale)
	assert.NoError(t, mock.ExpectationsWereMet())
}
