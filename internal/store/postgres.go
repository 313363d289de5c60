package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"teamup-backend/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

// Postgres is the gorm backed Store. The *gorm.DB should be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type Postgres struct {
	db     *gorm.DB
	logger echo.Logger
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db, logger: log.New("store")}
}

func (p *Postgres) SetLogger(l echo.Logger) {
	p.logger = l
}

// Models lists the tables owned by this store, for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.TeamRecord{},
		&models.Application{},
	}
}

func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (p *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return translate(p.db.WithContext(ctx).Create(u).Error, "create user")
}

func (p *Postgres) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := p.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, translate(err, "get user "+id)
	}
	return &user, nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := p.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, translate(err, "get user by email")
	}
	return &user, nil
}

func (p *Postgres) UpdateUser(ctx context.Context, u *models.User) error {
	return translate(p.db.WithContext(ctx).Save(u).Error, "update user "+u.ID)
}

func (p *Postgres) ListUsers(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := p.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, translate(err, "list users")
	}
	return users, nil
}

func (p *Postgres) InsertTeam(ctx context.Context, t *models.Team) error {
	rec := t.Record()
	if err := p.db.WithContext(ctx).Create(rec).Error; err != nil {
		return translate(err, "insert team")
	}
	t.ID = rec.ID
	t.CreatedAt = rec.CreatedAt
	t.UpdatedAt = rec.UpdatedAt
	return nil
}

func (p *Postgres) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var rec models.TeamRecord
	if err := p.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, translate(err, "get team "+id)
	}
	return rec.Team()
}

func (p *Postgres) ListTeams(ctx context.Context, q TeamQuery) ([]models.Team, error) {
	tx := p.db.WithContext(ctx).Model(&models.TeamRecord{})
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.CreatorID != "" {
		tx = tx.Where("creator_id = ?", q.CreatorID)
	}
	if q.IDs != nil {
		if len(q.IDs) == 0 {
			return []models.Team{}, nil
		}
		tx = tx.Where("id IN ?", q.IDs)
	}

	var recs []models.TeamRecord
	if err := tx.Order("created_at DESC").Find(&recs).Error; err != nil {
		return nil, translate(err, "list teams")
	}
	teams := make([]models.Team, 0, len(recs))
	for i := range recs {
		team, err := recs[i].Team()
		if err != nil {
			p.logger.Warnf("Skipping unreadable team row: %v", err)
			continue
		}
		teams = append(teams, *team)
	}
	return teams, nil
}

func (p *Postgres) UpdateTeamStatus(ctx context.Context, id string, status models.TeamStatus) (*models.Team, error) {
	res := p.db.WithContext(ctx).Model(&models.TeamRecord{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, translate(res.Error, "update team "+id)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("update team %s: %w", id, models.ErrNotFound)
	}
	return p.GetTeam(ctx, id)
}

func (p *Postgres) InsertApplication(ctx context.Context, a *models.Application) error {
	return translate(p.db.WithContext(ctx).Create(a).Error, "insert application")
}

func (p *Postgres) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	if err := p.db.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, translate(err, "get application "+id)
	}
	return &app, nil
}

func (p *Postgres) FindApplication(ctx context.Context, teamID, applicantID string) (*models.Application, error) {
	var app models.Application
	err := p.db.WithContext(ctx).
		Where("team_id = ? AND applicant_id = ?", teamID, applicantID).
		First(&app).Error
	if err != nil {
		return nil, translate(err, "find application")
	}
	return &app, nil
}

func (p *Postgres) ListApplications(ctx context.Context, q ApplicationQuery) ([]models.Application, error) {
	tx := p.db.WithContext(ctx).Model(&models.Application{})
	if q.TeamID != "" {
		tx = tx.Where("team_id = ?", q.TeamID)
	}
	if q.ApplicantID != "" {
		tx = tx.Where("applicant_id = ?", q.ApplicantID)
	}
	if q.TeamIDs != nil {
		if len(q.TeamIDs) == 0 {
			return []models.Application{}, nil
		}
		tx = tx.Where("team_id IN ?", q.TeamIDs)
	}

	var apps []models.Application
	if err := tx.Order("created_at DESC").Find(&apps).Error; err != nil {
		return nil, translate(err, "list applications")
	}
	return apps, nil
}

func (p *Postgres) UpdateApplicationStatus(ctx context.Context, id string, from, to models.ApplicationStatus, decidedAt time.Time) (*models.Application, error) {
	res := p.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"decided_at": decidedAt,
		})
	if res.Error != nil {
		return nil, translate(res.Error, "update application "+id)
	}
	if res.RowsAffected == 0 {
		if _, err := p.GetApplication(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("update application %s: %w", id, ErrStale)
	}
	return p.GetApplication(ctx, id)
}
