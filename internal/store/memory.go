package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"teamup-backend/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// Memory is an in-process Store. It enforces the same unique constraints as
// the database schema and is safe for concurrent use. Teams are kept as
// TeamRecord rows so reads go through the same conversion as Postgres.
type Memory struct {
	mu     sync.RWMutex
	now    func() time.Time
	seq    int64
	logger echo.Logger

	users        map[string]*models.User
	teams        map[string]*memTeam
	applications map[string]*memApplication
}

type memTeam struct {
	rec models.TeamRecord
	seq int64
}

type memApplication struct {
	app models.Application
	seq int64
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		now:          time.Now,
		logger:       log.New("store"),
		users:        make(map[string]*models.User),
		teams:        make(map[string]*memTeam),
		applications: make(map[string]*memApplication),
	}
}

// SetClock replaces the time source used for created_at and updated_at.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) SetLogger(l echo.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = l
}

func (m *Memory) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", ErrDuplicate)
		}
	}
	if u.ID == "" {
		id, err := models.NewID()
		if err != nil {
			return err
		}
		u.ID = id
	} else if _, ok := m.users[u.ID]; ok {
		return fmt.Errorf("create user: %w", ErrDuplicate)
	}
	now := m.now()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("get user %s: %w", id, models.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", models.ErrNotFound)
}

func (m *Memory) UpdateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return fmt.Errorf("update user %s: %w", u.ID, models.ErrNotFound)
	}
	u.UpdatedAt = m.now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) ListUsers(ctx context.Context, ids []string) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (m *Memory) InsertTeam(ctx context.Context, t *models.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := t.Record()
	if rec.ID == "" {
		id, err := models.NewID()
		if err != nil {
			return err
		}
		rec.ID = id
	} else if _, ok := m.teams[rec.ID]; ok {
		return fmt.Errorf("insert team: %w", ErrDuplicate)
	}
	now := m.now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	m.seq++
	m.teams[rec.ID] = &memTeam{rec: *rec, seq: m.seq}

	t.ID = rec.ID
	t.CreatedAt, t.UpdatedAt = now, now
	return nil
}

func (m *Memory) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.teams[id]
	if !ok {
		return nil, fmt.Errorf("get team %s: %w", id, models.ErrNotFound)
	}
	return row.rec.Team()
}

func (m *Memory) ListTeams(ctx context.Context, q TeamQuery) ([]models.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids map[string]struct{}
	if q.IDs != nil {
		ids = make(map[string]struct{}, len(q.IDs))
		for _, id := range q.IDs {
			ids[id] = struct{}{}
		}
	}

	rows := make([]*memTeam, 0, len(m.teams))
	for _, row := range m.teams {
		if q.Status != "" && row.rec.Status != q.Status {
			continue
		}
		if q.CreatorID != "" && row.rec.CreatorID != q.CreatorID {
			continue
		}
		if ids != nil {
			if _, ok := ids[row.rec.ID]; !ok {
				continue
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].rec.CreatedAt.Equal(rows[j].rec.CreatedAt) {
			return rows[i].rec.CreatedAt.After(rows[j].rec.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	teams := make([]models.Team, 0, len(rows))
	for _, row := range rows {
		team, err := row.rec.Team()
		if err != nil {
			m.logger.Warnf("Skipping unreadable team row: %v", err)
			continue
		}
		teams = append(teams, *team)
	}
	return teams, nil
}

func (m *Memory) UpdateTeamStatus(ctx context.Context, id string, status models.TeamStatus) (*models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.teams[id]
	if !ok {
		return nil, fmt.Errorf("update team %s: %w", id, models.ErrNotFound)
	}
	row.rec.Status = status
	row.rec.UpdatedAt = m.now()
	return row.rec.Team()
}

func (m *Memory) InsertApplication(ctx context.Context, a *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.applications {
		if row.app.TeamID == a.TeamID && row.app.ApplicantID == a.ApplicantID {
			return fmt.Errorf("insert application: %w", ErrDuplicate)
		}
	}
	if a.ID == "" {
		id, err := models.NewID()
		if err != nil {
			return err
		}
		a.ID = id
	}
	now := m.now()
	a.CreatedAt, a.UpdatedAt = now, now
	m.seq++
	m.applications[a.ID] = &memApplication{app: *a, seq: m.seq}
	return nil
}

func (m *Memory) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.applications[id]
	if !ok {
		return nil, fmt.Errorf("get application %s: %w", id, models.ErrNotFound)
	}
	app := row.app
	return &app, nil
}

func (m *Memory) FindApplication(ctx context.Context, teamID, applicantID string) (*models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, row := range m.applications {
		if row.app.TeamID == teamID && row.app.ApplicantID == applicantID {
			app := row.app
			return &app, nil
		}
	}
	return nil, fmt.Errorf("find application: %w", models.ErrNotFound)
}

func (m *Memory) ListApplications(ctx context.Context, q ApplicationQuery) ([]models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var teamIDs map[string]struct{}
	if q.TeamIDs != nil {
		teamIDs = make(map[string]struct{}, len(q.TeamIDs))
		for _, id := range q.TeamIDs {
			teamIDs[id] = struct{}{}
		}
	}

	rows := make([]*memApplication, 0)
	for _, row := range m.applications {
		if q.TeamID != "" && row.app.TeamID != q.TeamID {
			continue
		}
		if q.ApplicantID != "" && row.app.ApplicantID != q.ApplicantID {
			continue
		}
		if teamIDs != nil {
			if _, ok := teamIDs[row.app.TeamID]; !ok {
				continue
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].app.CreatedAt.Equal(rows[j].app.CreatedAt) {
			return rows[i].app.CreatedAt.After(rows[j].app.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	apps := make([]models.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, row.app)
	}
	return apps, nil
}

func (m *Memory) UpdateApplicationStatus(ctx context.Context, id string, from, to models.ApplicationStatus, decidedAt time.Time) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.applications[id]
	if !ok {
		return nil, fmt.Errorf("update application %s: %w", id, models.ErrNotFound)
	}
	if row.app.Status != from {
		return nil, fmt.Errorf("update application %s: %w", id, ErrStale)
	}
	row.app.Status = to
	row.app.DecidedAt = &decidedAt
	row.app.UpdatedAt = m.now()
	app := row.app
	return &app, nil
}
