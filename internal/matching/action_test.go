package matching

import (
	"testing"

	"teamup-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestResolveTeamAction(t *testing.T) {
	owner := &models.User{ID: "owner"}
	visitor := &models.User{ID: "visitor"}

	open := &models.Team{ID: "t1", CreatorID: "owner", Status: models.TeamStatusOpen}
	closed := &models.Team{ID: "t1", CreatorID: "owner", Status: models.TeamStatusClosed}

	applied := map[string]*models.Application{
		"t1": {ID: "a1", TeamID: "t1", ApplicantID: "visitor", Status: models.ApplicationRejected},
	}

	tests := []struct {
		name string
		team *models.Team
		user *models.User
		apps map[string]*models.Application
		want ActionState
	}{
		{"anonymous on open team", open, nil, nil, ActionState{Kind: ActionRequiresLogin}},
		{"anonymous on closed team", closed, nil, applied, ActionState{Kind: ActionRequiresLogin}},
		{"user without id", open, &models.User{}, nil, ActionState{Kind: ActionRequiresLogin}},
		{"owner of closed team", closed, owner, nil, ActionState{Kind: ActionOwnerView}},
		{"owner of open team", open, owner, nil, ActionState{Kind: ActionOwnerView}},
		{"applied to closed team", closed, visitor, applied, ActionState{Kind: ActionAlreadyApplied, ApplicationStatus: models.ApplicationRejected}},
		{"applied to open team", open, visitor, applied, ActionState{Kind: ActionAlreadyApplied, ApplicationStatus: models.ApplicationRejected}},
		{"closed team", closed, visitor, nil, ActionState{Kind: ActionClosed}},
		{"open team", open, visitor, map[string]*models.Application{}, ActionState{Kind: ActionCanApply}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTeamAction(tt.team, tt.user, tt.apps))
		})
	}
}

func TestResolveTeamActionIgnoresOtherApplicants(t *testing.T) {
	team := &models.Team{ID: "t1", CreatorID: "owner", Status: models.TeamStatusOpen}
	apps := map[string]*models.Application{
		"t1": {TeamID: "t1", ApplicantID: "someone-else", Status: models.ApplicationPending},
	}
	got := ResolveTeamAction(team, &models.User{ID: "visitor"}, apps)
	assert.Equal(t, ActionCanApply, got.Kind)
}
