// Package matching implements team creation, applications and their review
// on top of a store.Store.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"teamup-backend/internal/metrics"
	"teamup-backend/internal/models"
	"teamup-backend/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// TeamCache holds the open teams snapshot served to the browse page.
type TeamCache interface {
	// OpenTeams reports a miss with ok false and the generation a fill
	// must be stored under.
	OpenTeams(ctx context.Context) (teams []models.Team, gen int64, ok bool, err error)
	// StoreOpenTeams must drop or hide the snapshot when gen is no longer
	// current.
	StoreOpenTeams(ctx context.Context, gen int64, teams []models.Team) error
	Invalidate(ctx context.Context) error
}

// Notifier is told about successful writes. Implementations must not block.
type Notifier interface {
	TeamCreated(team *models.Team)
	ApplicationSubmitted(team *models.Team, app *models.Application)
	ApplicationDecided(team *models.Team, app *models.Application)
}

type Service struct {
	store  store.Store
	cache  TeamCache
	notify Notifier
	logger echo.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithCache(c TeamCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notify = n }
}

func WithLogger(l echo.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: log.New("matching"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TeamView is a team together with what the current user can do with it.
type TeamView struct {
	Team   *models.Team `json:"team"`
	Action ActionState  `json:"action"`
}

// storeFailure keeps not-found errors as they are and wraps anything else
// in a ConstraintError.
func storeFailure(op string, err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return err
	}
	return &models.ConstraintError{Op: op, Err: err}
}

// CreateTeam validates in and stores it as an open team owned by creatorID.
func (s *Service) CreateTeam(ctx context.Context, in models.TeamInput, creatorID string) (*models.Team, error) {
	team, err := models.NewTeam(in, creatorID)
	if err != nil {
		return nil, err
	}
	if err := s.store.InsertTeam(ctx, team); err != nil {
		return nil, storeFailure("create team", err)
	}

	metrics.RecordTeamCreated(string(team.Type()))
	s.invalidate(ctx)
	if s.notify != nil {
		s.notify.TeamCreated(team)
	}
	return team, nil
}

// ApplyToTeam records a pending application of applicantID to teamID.
// Closed teams are not refused here; see ResolveTeamAction.
func (s *Service) ApplyToTeam(ctx context.Context, teamID, applicantID, message string) (*models.Application, error) {
	app, err := models.NewApplication(teamID, applicantID, message)
	if err != nil {
		metrics.RecordApplicationRefused("validation")
		return nil, err
	}

	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			metrics.RecordApplicationRefused("not_found")
		}
		return nil, storeFailure("load team", err)
	}
	if team.IsOwnedBy(applicantID) {
		metrics.RecordApplicationRefused("self")
		return nil, models.ErrSelfApplication
	}

	existing, err := s.FindApplication(ctx, teamID, applicantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		metrics.RecordApplicationRefused("duplicate")
		return nil, models.ErrDuplicateApplication
	}

	if err := s.store.InsertApplication(ctx, app); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			metrics.RecordApplicationRefused("duplicate")
			return nil, models.ErrDuplicateApplication
		}
		return nil, storeFailure("create application", err)
	}

	metrics.RecordApplicationSubmitted()
	if s.notify != nil {
		s.notify.ApplicationSubmitted(team, app)
	}
	return app, nil
}

// UpdateApplicationStatus lets the team's creator accept or reject a pending
// application.
func (s *Service) UpdateApplicationStatus(ctx context.Context, applicationID string, status models.ApplicationStatus, actorID string) (*models.Application, error) {
	if !status.IsDecision() {
		return nil, &models.ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("must be %q or %q", models.ApplicationAccepted, models.ApplicationRejected),
		}
	}

	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, storeFailure("load application", err)
	}
	team, err := s.store.GetTeam(ctx, app.TeamID)
	if err != nil {
		return nil, storeFailure("load team", err)
	}
	if !team.IsOwnedBy(actorID) {
		return nil, &models.AuthorizationError{ActorID: actorID, Action: "review applications for team " + team.ID}
	}

	from := app.Status
	if err := app.Decide(status, s.now()); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateApplicationStatus(ctx, app.ID, from, app.Status, *app.DecidedAt)
	if errors.Is(err, store.ErrStale) {
		current, getErr := s.store.GetApplication(ctx, app.ID)
		if getErr != nil {
			return nil, storeFailure("load application", getErr)
		}
		return nil, &models.InvalidTransitionError{From: current.Status, To: status}
	}
	if err != nil {
		return nil, storeFailure("update application", err)
	}

	metrics.RecordApplicationDecision(string(updated.Status))
	if s.notify != nil {
		s.notify.ApplicationDecided(team, updated)
	}
	return updated, nil
}

// SetTeamStatus opens or closes a team. Only its creator may do so.
func (s *Service) SetTeamStatus(ctx context.Context, teamID string, status models.TeamStatus, actorID string) (*models.Team, error) {
	if !status.Valid() {
		return nil, &models.ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("must be %q or %q", models.TeamStatusOpen, models.TeamStatusClosed),
		}
	}
	team, err := s.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, storeFailure("load team", err)
	}
	if !team.IsOwnedBy(actorID) {
		return nil, &models.AuthorizationError{ActorID: actorID, Action: "change the status of team " + team.ID}
	}
	if team.Status == status {
		return team, nil
	}

	updated, err := s.store.UpdateTeamStatus(ctx, teamID, status)
	if err != nil {
		return nil, storeFailure("update team", err)
	}
	metrics.RecordTeamStatusChange(string(status))
	s.invalidate(ctx)
	return updated, nil
}

func (s *Service) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	team, err := s.store.GetTeam(ctx, id)
	if err != nil {
		return nil, storeFailure("load team", err)
	}
	return team, nil
}

// ListOpenTeams returns open teams, newest first, from the cache when it has
// a snapshot.
func (s *Service) ListOpenTeams(ctx context.Context) ([]models.Team, error) {
	var (
		gen  int64
		fill bool
	)
	if s.cache != nil {
		teams, g, ok, err := s.cache.OpenTeams(ctx)
		switch {
		case err != nil:
			s.logger.Warnf("Open teams cache read failed: %v", err)
		case ok:
			return teams, nil
		default:
			gen, fill = g, true
		}
	}

	// the generation is read before the store so a write that lands in
	// between leaves this fill under a dead generation
	teams, err := s.store.ListTeams(ctx, store.TeamQuery{Status: models.TeamStatusOpen})
	if err != nil {
		return nil, storeFailure("list teams", err)
	}
	if fill {
		if err := s.cache.StoreOpenTeams(ctx, gen, teams); err != nil {
			s.logger.Warnf("Open teams cache write failed: %v", err)
		}
	}
	return teams, nil
}

// ListTeamsByCreator returns every team userID created, whatever its status.
func (s *Service) ListTeamsByCreator(ctx context.Context, userID string) ([]models.Team, error) {
	if strings.TrimSpace(userID) == "" {
		return []models.Team{}, nil
	}
	teams, err := s.store.ListTeams(ctx, store.TeamQuery{CreatorID: userID})
	if err != nil {
		return nil, storeFailure("list teams", err)
	}
	return teams, nil
}

// FindApplication returns userID's application to teamID, or nil if there
// is none.
func (s *Service) FindApplication(ctx context.Context, teamID, userID string) (*models.Application, error) {
	app, err := s.store.FindApplication(ctx, teamID, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeFailure("load application", err)
	}
	return app, nil
}

// ApplicationsByApplicant indexes userID's applications by team id.
func (s *Service) ApplicationsByApplicant(ctx context.Context, userID string) (map[string]*models.Application, error) {
	byTeam := make(map[string]*models.Application)
	if userID == "" {
		return byTeam, nil
	}
	apps, err := s.store.ListApplications(ctx, store.ApplicationQuery{ApplicantID: userID})
	if err != nil {
		return nil, storeFailure("list applications", err)
	}
	for i := range apps {
		byTeam[apps[i].TeamID] = &apps[i]
	}
	return byTeam, nil
}

// ListApplicationsByApplicant returns userID's applications, newest first,
// each with a summary of the team applied to.
func (s *Service) ListApplicationsByApplicant(ctx context.Context, userID string) ([]models.ApplicationWithTeam, error) {
	if strings.TrimSpace(userID) == "" {
		return []models.ApplicationWithTeam{}, nil
	}
	apps, err := s.store.ListApplications(ctx, store.ApplicationQuery{ApplicantID: userID})
	if err != nil {
		return nil, storeFailure("list applications", err)
	}

	teamIDs := make([]string, 0, len(apps))
	for _, app := range apps {
		teamIDs = append(teamIDs, app.TeamID)
	}
	teams, err := s.store.ListTeams(ctx, store.TeamQuery{IDs: teamIDs})
	if err != nil {
		return nil, storeFailure("list teams", err)
	}
	summaries := make(map[string]models.TeamSummary, len(teams))
	for i := range teams {
		summaries[teams[i].ID] = teams[i].Summary()
	}

	out := make([]models.ApplicationWithTeam, 0, len(apps))
	for _, app := range apps {
		view := models.ApplicationWithTeam{Application: app}
		if summary, ok := summaries[app.TeamID]; ok {
			view.Team = &summary
		}
		out = append(out, view)
	}
	return out, nil
}

// ListApplicationsForCreator returns applications to the teams userID
// created, newest first, with team and applicant summaries.
func (s *Service) ListApplicationsForCreator(ctx context.Context, userID string) ([]models.ReceivedApplication, error) {
	teams, err := s.ListTeamsByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return []models.ReceivedApplication{}, nil
	}

	teamIDs := make([]string, 0, len(teams))
	summaries := make(map[string]models.TeamSummary, len(teams))
	for i := range teams {
		teamIDs = append(teamIDs, teams[i].ID)
		summaries[teams[i].ID] = teams[i].Summary()
	}

	apps, err := s.store.ListApplications(ctx, store.ApplicationQuery{TeamIDs: teamIDs})
	if err != nil {
		return nil, storeFailure("list applications", err)
	}

	applicantIDs := make([]string, 0, len(apps))
	seen := make(map[string]struct{}, len(apps))
	for _, app := range apps {
		if _, ok := seen[app.ApplicantID]; ok {
			continue
		}
		seen[app.ApplicantID] = struct{}{}
		applicantIDs = append(applicantIDs, app.ApplicantID)
	}
	users, err := s.store.ListUsers(ctx, applicantIDs)
	if err != nil {
		return nil, storeFailure("list users", err)
	}
	applicants := make(map[string]models.UserSummary, len(users))
	for i := range users {
		applicants[users[i].ID] = users[i].Summary()
	}

	out := make([]models.ReceivedApplication, 0, len(apps))
	for _, app := range apps {
		view := models.ReceivedApplication{Application: app}
		if summary, ok := summaries[app.TeamID]; ok {
			view.Team = &summary
		}
		if applicant, ok := applicants[app.ApplicantID]; ok {
			view.Applicant = &applicant
		}
		out = append(out, view)
	}
	return out, nil
}

// BrowseTeams filters the open teams and resolves the action user can take
// on each. user may be nil.
func (s *Service) BrowseTeams(ctx context.Context, f TeamFilter, user *models.User) ([]TeamView, error) {
	teams, err := s.ListOpenTeams(ctx)
	if err != nil {
		return nil, err
	}
	visible := ListVisibleTeams(teams, f)

	apps, err := s.applicationsFor(ctx, user)
	if err != nil {
		return nil, err
	}
	views := make([]TeamView, 0, len(visible))
	for i := range visible {
		team := &visible[i]
		views = append(views, TeamView{Team: team, Action: ResolveTeamAction(team, user, apps)})
	}
	return views, nil
}

// ViewTeam loads one team and the action user can take on it.
func (s *Service) ViewTeam(ctx context.Context, id string, user *models.User) (*TeamView, error) {
	team, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	apps := map[string]*models.Application{}
	if user != nil {
		app, err := s.FindApplication(ctx, team.ID, user.ID)
		if err != nil {
			return nil, err
		}
		if app != nil {
			apps[team.ID] = app
		}
	}
	return &TeamView{Team: team, Action: ResolveTeamAction(team, user, apps)}, nil
}

func (s *Service) applicationsFor(ctx context.Context, user *models.User) (map[string]*models.Application, error) {
	if user == nil {
		return nil, nil
	}
	return s.ApplicationsByApplicant(ctx, user.ID)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warnf("Open teams cache invalidation failed: %v", err)
	}
}
