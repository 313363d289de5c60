package matching

import (
	"strings"

	"teamup-backend/internal/models"
)

// FilterAll disables a TeamFilter dimension. An empty value does the same.
const FilterAll = "all"

const (
	PaidOnly   = "paid"
	UnpaidOnly = "unpaid"
)

// TeamFilter is the browse page's search box and drop-downs.
type TeamFilter struct {
	Search string
	Type   string
	Status string
	Paid   string
}

// Matches reports whether team passes every active predicate.
func (f TeamFilter) Matches(team *models.Team) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(team.Name), term) &&
			!strings.Contains(strings.ToLower(team.Description), term) {
			return false
		}
	}
	if active(f.Type) && string(team.Type()) != f.Type {
		return false
	}
	if active(f.Status) && string(team.Status) != f.Status {
		return false
	}
	if active(f.Paid) {
		project, ok := team.Details.(models.ProjectDetails)
		if !ok {
			return false
		}
		paid := project.IsPaid != nil && *project.IsPaid
		switch f.Paid {
		case PaidOnly:
			return paid
		case UnpaidOnly:
			return !paid
		default:
			return false
		}
	}
	return true
}

// ListVisibleTeams returns the teams that match f, in their input order.
// Callers pass teams newest first, so the result is newest first too.
func ListVisibleTeams(teams []models.Team, f TeamFilter) []models.Team {
	visible := make([]models.Team, 0, len(teams))
	for i := range teams {
		if f.Matches(&teams[i]) {
			visible = append(visible, teams[i])
		}
	}
	return visible
}

func active(v string) bool {
	return v != "" && v != FilterAll
}
