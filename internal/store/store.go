// Package store persists users, teams and team applications.
//
// Every call is an independent round trip. Nothing here wraps several calls
// in a transaction; callers that check-then-write rely on the unique
// constraints reported through ErrDuplicate.
package store

import (
	"context"
	"errors"
	"time"

	"teamup-backend/internal/models"
)

var (
	// ErrNotFound is the error lookups that find nothing wrap.
	ErrNotFound = models.ErrNotFound
	// ErrDuplicate is returned when a write violates a unique constraint,
	// such as a second application for the same (team, applicant) pair.
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrStale is returned by compare-and-set updates when the row no
	// longer holds the expected value.
	ErrStale = errors.New("store: row changed concurrently")
)

type TeamQuery struct {
	Status    models.TeamStatus
	CreatorID string
	IDs       []string
}

type ApplicationQuery struct {
	TeamID      string
	ApplicantID string
	TeamIDs     []string
}

// Store is implemented by Postgres and Memory. List methods return rows
// ordered by created_at, newest first.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context, ids []string) ([]models.User, error)

	InsertTeam(ctx context.Context, t *models.Team) error
	GetTeam(ctx context.Context, id string) (*models.Team, error)
	ListTeams(ctx context.Context, q TeamQuery) ([]models.Team, error)
	UpdateTeamStatus(ctx context.Context, id string, status models.TeamStatus) (*models.Team, error)

	InsertApplication(ctx context.Context, a *models.Application) error
	GetApplication(ctx context.Context, id string) (*models.Application, error)
	FindApplication(ctx context.Context, teamID, applicantID string) (*models.Application, error)
	ListApplications(ctx context.Context, q ApplicationQuery) ([]models.Application, error)
	// UpdateApplicationStatus sets the status only if it is still from,
	// returning ErrStale otherwise.
	UpdateApplicationStatus(ctx context.Context, id string, from, to models.ApplicationStatus, decidedAt time.Time) (*models.Application, error)
}
