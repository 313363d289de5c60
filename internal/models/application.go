package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	return s == ApplicationPending || s.IsDecision()
}

// IsDecision reports whether s is a terminal status a creator can set.
func (s ApplicationStatus) IsDecision() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

// Application is a user's request to join a team. At most one exists per
// (team, applicant) pair.
type Application struct {
	ID          string            `gorm:"primaryKey;size:36" json:"id"`
	TeamID      string            `gorm:"not null;size:36;uniqueIndex:idx_team_applications_team_applicant" json:"team_id"`
	ApplicantID string            `gorm:"not null;size:36;uniqueIndex:idx_team_applications_team_applicant;index" json:"applicant_id"`
	Message     string            `gorm:"not null" json:"message"`
	Status      ApplicationStatus `gorm:"not null;size:16;index" json:"status"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DecidedAt   *time.Time        `json:"decided_at,omitempty"`
}

func (Application) TableName() string {
	return "team_applications"
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID != "" {
		return nil
	}
	id, err := NewID()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

// NewApplication returns a pending application after checking the fields
// that do not need the team. Self and duplicate applications are checked by
// the caller, which has access to the store.
func NewApplication(teamID, applicantID, message string) (*Application, error) {
	if strings.TrimSpace(applicantID) == "" {
		return nil, &ValidationError{Reason: "you must be signed in to apply"}
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, invalid("message", "is required: tell the team why you want to join")
	}
	if strings.TrimSpace(teamID) == "" {
		return nil, invalid("team_id", "is required")
	}
	return &Application{
		TeamID:      teamID,
		ApplicantID: applicantID,
		Message:     message,
		Status:      ApplicationPending,
	}, nil
}

// Decide moves a pending application to accepted or rejected. Decided
// applications never change again.
func (a *Application) Decide(status ApplicationStatus, at time.Time) error {
	if !status.IsDecision() {
		return invalid("status", fmt.Sprintf("must be %q or %q", ApplicationAccepted, ApplicationRejected))
	}
	if a.Status != ApplicationPending {
		return &InvalidTransitionError{From: a.Status, To: status}
	}
	a.Status = status
	a.DecidedAt = &at
	return nil
}

// ApplicationWithTeam is an applicant's view of one of their applications.
type ApplicationWithTeam struct {
	Application
	Team *TeamSummary `json:"team,omitempty"`
}

// ReceivedApplication is a creator's view of an application to one of
// their teams.
type ReceivedApplication struct {
	Application
	Team      *TeamSummary `json:"team,omitempty"`
	Applicant *UserSummary `json:"applicant,omitempty"`
}
