package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"teamup-backend/internal/email"
	"teamup-backend/internal/models"

	"github.com/labstack/echo/v4"
)

const sendTimeout = 30 * time.Second

type UserGetter interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Dispatcher fans domain events out to email and Telegram. Every send runs
// in its own goroutine and failures are only logged. Either channel may be
// nil.
type Dispatcher struct {
	users    UserGetter
	email    email.EmailClient
	telegram *Telegram
	logger   echo.Logger
	wg       sync.WaitGroup
}

func NewDispatcher(users UserGetter, emailClient email.EmailClient, telegram *Telegram, logger echo.Logger) *Dispatcher {
	return &Dispatcher{
		users:    users,
		email:    emailClient,
		telegram: telegram,
		logger:   logger,
	}
}

// Wait blocks until all dispatched sends have finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

func (d *Dispatcher) run(fn func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (d *Dispatcher) ping(message string) {
	if d.telegram == nil {
		return
	}
	d.run(func(ctx context.Context) {
		if err := d.telegram.Send(ctx, message); err != nil {
			d.logger.Warnf("Telegram notification failed: %v", err)
		}
	})
}

func (d *Dispatcher) UserSignedUp(user *models.User) {
	if d == nil || user == nil {
		return
	}
	if d.email != nil {
		d.email.SendWelcomeEmail(user)
	}
	d.ping(fmt.Sprintf("New sign-up: %s", user.ID))
}

func (d *Dispatcher) UserSignedIn(user *models.User) {
	if d == nil || user == nil {
		return
	}
	d.ping(fmt.Sprintf("New sign-in: %s", user.ID))
}

func (d *Dispatcher) TeamCreated(team *models.Team) {
	if d == nil || team == nil {
		return
	}
	d.ping(fmt.Sprintf("New %s team %q (%s)", team.Type(), team.Name, team.ID))
}

// ApplicationSubmitted emails the team's creator.
func (d *Dispatcher) ApplicationSubmitted(team *models.Team, app *models.Application) {
	if d == nil || team == nil || app == nil || d.email == nil {
		return
	}
	d.run(func(ctx context.Context) {
		creator, err := d.users.GetUser(ctx, team.CreatorID)
		if err != nil {
			d.logger.Warnf("Skipping application email for team %s: %v", team.ID, err)
			return
		}
		applicant, err := d.users.GetUser(ctx, app.ApplicantID)
		if err != nil {
			d.logger.Warnf("Skipping application email for team %s: %v", team.ID, err)
			return
		}
		d.email.SendApplicationReceivedEmail(creator, applicant, team, app)
	})
}

// ApplicationDecided emails the applicant.
func (d *Dispatcher) ApplicationDecided(team *models.Team, app *models.Application) {
	if d == nil || team == nil || app == nil || d.email == nil {
		return
	}
	d.run(func(ctx context.Context) {
		applicant, err := d.users.GetUser(ctx, app.ApplicantID)
		if err != nil {
			d.logger.Warnf("Skipping decision email for application %s: %v", app.ID, err)
			return
		}
		d.email.SendApplicationDecisionEmail(applicant, team, app)
	})
}
