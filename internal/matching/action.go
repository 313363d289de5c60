package matching

import (
	"teamup-backend/internal/models"
)

// ActionKind is what a user can do with a team they are looking at.
type ActionKind string

const (
	ActionRequiresLogin  ActionKind = "requires_login"
	ActionOwnerView      ActionKind = "owner_view"
	ActionAlreadyApplied ActionKind = "already_applied"
	ActionClosed         ActionKind = "closed"
	ActionCanApply       ActionKind = "can_apply"
)

// ActionState is the resolved affordance for one (team, user) pair.
// ApplicationStatus is set only for ActionAlreadyApplied.
type ActionState struct {
	Kind              ActionKind               `json:"kind"`
	ApplicationStatus models.ApplicationStatus `json:"application_status,omitempty"`
}

// ResolveTeamAction picks the action for team as seen by user. The first
// matching rule wins: anonymous, owner, existing application, closed team,
// then apply. applications is keyed by team id and may be nil.
func ResolveTeamAction(team *models.Team, user *models.User, applications map[string]*models.Application) ActionState {
	if user == nil || user.ID == "" {
		return ActionState{Kind: ActionRequiresLogin}
	}
	if team.IsOwnedBy(user.ID) {
		return ActionState{Kind: ActionOwnerView}
	}
	if app, ok := applications[team.ID]; ok && app != nil && app.ApplicantID == user.ID {
		return ActionState{Kind: ActionAlreadyApplied, ApplicationStatus: app.Status}
	}
	if !team.IsOpen() {
		return ActionState{Kind: ActionClosed}
	}
	return ActionState{Kind: ActionCanApply}
}
