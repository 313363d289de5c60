package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type TeamType string

const (
	TeamTypeProjectStartup TeamType = "project_startup"
	TeamTypeSports         TeamType = "sports"
	TeamTypeHousing        TeamType = "housing"
	TeamTypeMusic          TeamType = "music"
	TeamTypeStudy          TeamType = "study"
	TeamTypeTravel         TeamType = "travel"
	TeamTypeOther          TeamType = "other"
)

// TeamTypes lists every category in the order the client shows them.
var TeamTypes = []TeamType{
	TeamTypeProjectStartup,
	TeamTypeSports,
	TeamTypeHousing,
	TeamTypeMusic,
	TeamTypeStudy,
	TeamTypeTravel,
	TeamTypeOther,
}

func (t TeamType) Valid() bool {
	for _, known := range TeamTypes {
		if t == known {
			return true
		}
	}
	return false
}

type TeamStatus string

const (
	TeamStatusOpen   TeamStatus = "open"
	TeamStatusClosed TeamStatus = "closed"
)

func (s TeamStatus) Valid() bool {
	return s == TeamStatusOpen || s == TeamStatusClosed
}

type GenderPreference string

const (
	GenderPreferenceAny    GenderPreference = "any"
	GenderPreferenceMale   GenderPreference = "male"
	GenderPreferenceFemale GenderPreference = "female"
)

type RoomType string

const (
	RoomTypePrivate     RoomType = "private"
	RoomTypeShared      RoomType = "shared"
	RoomTypeEntirePlace RoomType = "entire_place"
)

type StudyLevel string

const (
	StudyLevelHighSchool    StudyLevel = "high_school"
	StudyLevelUndergraduate StudyLevel = "undergraduate"
	StudyLevelGraduate      StudyLevel = "graduate"
	StudyLevelProfessional  StudyLevel = "professional"
)

// DateLayout is the wire format of dates such as a project deadline.
const DateLayout = "2006-01-02"

// TeamDetails is the category specific part of a team. Exactly one
// implementation exists per TeamType and it carries only that category's
// fields.
type TeamDetails interface {
	Type() TeamType
	fill(in *TeamInput)
}

type ProjectDetails struct {
	SkillsNeeded []string   `json:"skills_needed,omitempty"`
	IsPaid       *bool      `json:"is_paid,omitempty"`
	Deadline     *time.Time `json:"deadline,omitempty"`
}

type HousingDetails struct {
	City             string           `json:"city" validate:"required"`
	RentBudget       *float64         `json:"rent_budget,omitempty" validate:"omitempty,gt=0"`
	GenderPreference GenderPreference `json:"gender_preference,omitempty" validate:"omitempty,oneof=any male female"`
	RoomType         RoomType         `json:"room_type,omitempty" validate:"omitempty,oneof=private shared entire_place"`
}

type SportsDetails struct {
	SportType string `json:"sport_type" validate:"required"`
	Schedule  string `json:"schedule,omitempty"`
	Location  string `json:"location,omitempty"`
}

type MusicDetails struct {
	Genre             string   `json:"genre,omitempty"`
	InstrumentsNeeded []string `json:"instruments_needed,omitempty"`
}

type StudyDetails struct {
	Subject    string     `json:"subject" validate:"required"`
	StudyLevel StudyLevel `json:"study_level,omitempty" validate:"omitempty,oneof=high_school undergraduate graduate professional"`
}

type TravelDetails struct {
	Destination string `json:"destination" validate:"required"`
	TravelDates string `json:"travel_dates,omitempty"`
	BudgetRange string `json:"budget_range,omitempty"`
}

type OtherDetails struct{}

func (ProjectDetails) Type() TeamType { return TeamTypeProjectStartup }
func (HousingDetails) Type() TeamType { return TeamTypeHousing }
func (SportsDetails) Type() TeamType  { return TeamTypeSports }
func (MusicDetails) Type() TeamType   { return TeamTypeMusic }
func (StudyDetails) Type() TeamType   { return TeamTypeStudy }
func (TravelDetails) Type() TeamType  { return TeamTypeTravel }
func (OtherDetails) Type() TeamType   { return TeamTypeOther }

func (d ProjectDetails) fill(in *TeamInput) {
	in.SkillsNeeded = d.SkillsNeeded
	in.IsPaid = d.IsPaid
	if d.Deadline != nil {
		in.Deadline = d.Deadline.Format(DateLayout)
	}
}

func (d HousingDetails) fill(in *TeamInput) {
	in.City = d.City
	in.RentBudget = d.RentBudget
	in.GenderPreference = d.GenderPreference
	in.RoomType = d.RoomType
}

func (d SportsDetails) fill(in *TeamInput) {
	in.SportType = d.SportType
	in.Schedule = d.Schedule
	in.Location = d.Location
}

func (d MusicDetails) fill(in *TeamInput) {
	in.Genre = d.Genre
	in.InstrumentsNeeded = d.InstrumentsNeeded
}

func (d StudyDetails) fill(in *TeamInput) {
	in.Subject = d.Subject
	in.StudyLevel = d.StudyLevel
}

func (d TravelDetails) fill(in *TeamInput) {
	in.Destination = d.Destination
	in.TravelDates = d.TravelDates
	in.BudgetRange = d.BudgetRange
}

func (d OtherDetails) fill(in *TeamInput) {}

// TeamInput is the flat shape a client sends when creating a team. It can
// carry fields of every category; only the ones matching TeamType survive
// NewTeam.
type TeamInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TeamType    TeamType `json:"team_type"`
	TeamSize    *int     `json:"team_size,omitempty"`

	SkillsNeeded []string `json:"skills_needed,omitempty"`
	IsPaid       *bool    `json:"is_paid,omitempty"`
	Deadline     string   `json:"deadline,omitempty"`

	City             string           `json:"city,omitempty"`
	RentBudget       *float64         `json:"rent_budget,omitempty"`
	GenderPreference GenderPreference `json:"gender_preference,omitempty"`
	RoomType         RoomType         `json:"room_type,omitempty"`

	SportType string `json:"sport_type,omitempty"`
	Schedule  string `json:"schedule,omitempty"`
	Location  string `json:"location,omitempty"`

	Genre             string   `json:"genre,omitempty"`
	InstrumentsNeeded []string `json:"instruments_needed,omitempty"`

	Subject    string     `json:"subject,omitempty"`
	StudyLevel StudyLevel `json:"study_level,omitempty"`

	Destination string `json:"destination,omitempty"`
	TravelDates string `json:"travel_dates,omitempty"`
	BudgetRange string `json:"budget_range,omitempty"`
}

// details builds the variant for in.TeamType, copying only that category's
// fields.
func (in TeamInput) details() (TeamDetails, error) {
	switch in.TeamType {
	case TeamTypeProjectStartup:
		d := ProjectDetails{
			SkillsNeeded: normalizeList(in.SkillsNeeded),
			IsPaid:       in.IsPaid,
		}
		if deadline := strings.TrimSpace(in.Deadline); deadline != "" {
			t, err := time.Parse(DateLayout, deadline)
			if err != nil {
				return nil, invalid("deadline", "must be a date formatted as YYYY-MM-DD")
			}
			d.Deadline = &t
		}
		return d, nil
	case TeamTypeHousing:
		return HousingDetails{
			City:             strings.TrimSpace(in.City),
			RentBudget:       in.RentBudget,
			GenderPreference: in.GenderPreference,
			RoomType:         in.RoomType,
		}, nil
	case TeamTypeSports:
		return SportsDetails{
			SportType: strings.TrimSpace(in.SportType),
			Schedule:  strings.TrimSpace(in.Schedule),
			Location:  strings.TrimSpace(in.Location),
		}, nil
	case TeamTypeMusic:
		return MusicDetails{
			Genre:             strings.TrimSpace(in.Genre),
			InstrumentsNeeded: normalizeList(in.InstrumentsNeeded),
		}, nil
	case TeamTypeStudy:
		return StudyDetails{
			Subject:    strings.TrimSpace(in.Subject),
			StudyLevel: in.StudyLevel,
		}, nil
	case TeamTypeTravel:
		return TravelDetails{
			Destination: strings.TrimSpace(in.Destination),
			TravelDates: strings.TrimSpace(in.TravelDates),
			BudgetRange: strings.TrimSpace(in.BudgetRange),
		}, nil
	case TeamTypeOther:
		return OtherDetails{}, nil
	}
	return nil, invalid("team_type", fmt.Sprintf("has unknown value %q", in.TeamType))
}

// Team is a joinable group. The common fields live on the struct and the
// category specific ones in Details.
type Team struct {
	ID          string      `json:"id"`
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description" validate:"required"`
	CreatorID   string      `json:"creator_id" validate:"required"`
	Size        *int        `json:"team_size" validate:"omitempty,gt=0"`
	Status      TeamStatus  `json:"status" validate:"oneof=open closed"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Details     TeamDetails `json:"-" validate:"-"`
}

// NewTeam validates in and returns an open team owned by creatorID. Fields
// that belong to another category than in.TeamType are dropped.
func NewTeam(in TeamInput, creatorID string) (*Team, error) {
	if strings.TrimSpace(creatorID) == "" {
		return nil, &ValidationError{Reason: "you must be signed in to create a team"}
	}

	team := &Team{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CreatorID:   creatorID,
		Size:        in.TeamSize,
		Status:      TeamStatusOpen,
	}
	if in.TeamType == "" {
		return nil, invalid("team_type", "is required")
	}
	if !in.TeamType.Valid() {
		return nil, invalid("team_type", fmt.Sprintf("has unknown value %q", in.TeamType))
	}

	details, err := in.details()
	if err != nil {
		return nil, err
	}
	team.Details = details

	if err := team.Validate(); err != nil {
		return nil, err
	}
	return team, nil
}

// Validate checks the invariants every stored team must hold.
func (t *Team) Validate() error {
	if err := validate.Struct(t); err != nil {
		return validationError(err, "")
	}
	if t.Details == nil {
		return invalid("team_type", "is required")
	}
	if err := validate.Struct(t.Details); err != nil {
		return validationError(err, t.Details.Type())
	}
	return nil
}

func (t *Team) Type() TeamType {
	if t.Details == nil {
		return ""
	}
	return t.Details.Type()
}

func (t *Team) IsOwnedBy(userID string) bool {
	return userID != "" && t.CreatorID == userID
}

func (t *Team) IsOpen() bool {
	return t.Status == TeamStatusOpen
}

// Input flattens the team back into the wide client shape.
func (t *Team) Input() TeamInput {
	in := TeamInput{
		Name:        t.Name,
		Description: t.Description,
		TeamType:    t.Type(),
		TeamSize:    t.Size,
	}
	if t.Details != nil {
		t.Details.fill(&in)
	}
	return in
}

// Summary returns the compact form embedded in application listings.
func (t *Team) Summary() TeamSummary {
	return TeamSummary{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		TeamType:    t.Type(),
		CreatorID:   t.CreatorID,
	}
}

type teamJSON struct {
	ID        string     `json:"id"`
	CreatorID string     `json:"creator_id"`
	Status    TeamStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	TeamInput
}

// MarshalJSON writes the team in the flat shape of the teams table, with
// fields of other categories left out.
func (t Team) MarshalJSON() ([]byte, error) {
	return json.Marshal(teamJSON{
		ID:        t.ID,
		CreatorID: t.CreatorID,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		TeamInput: t.Input(),
	})
}

func (t *Team) UnmarshalJSON(data []byte) error {
	var raw teamJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	details, err := raw.TeamInput.details()
	if err != nil {
		return err
	}
	*t = Team{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		CreatorID:   raw.CreatorID,
		Size:        raw.TeamSize,
		Status:      raw.Status,
		CreatedAt:   raw.CreatedAt,
		UpdatedAt:   raw.UpdatedAt,
		Details:     details,
	}
	return nil
}

// TeamSummary is the subset of a team shown next to an application.
type TeamSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TeamType    TeamType `json:"team_type"`
	CreatorID   string   `json:"creator_id"`
}

// normalizeList trims entries and removes blanks and duplicates, keeping the
// first occurrence.
func normalizeList(items []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
