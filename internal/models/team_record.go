package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TeamRecord is the row stored in the teams table. It keeps one nullable
// column per category field so the table stays compatible with existing
// clients; conversion to and from Team only touches the columns of the
// row's team_type.
type TeamRecord struct {
	ID          string     `gorm:"primaryKey;size:36"`
	Name        string     `gorm:"not null"`
	Description string     `gorm:"not null"`
	CreatorID   string     `gorm:"not null;size:36;index"`
	TeamType    TeamType   `gorm:"not null;size:32;index"`
	TeamSize    *int
	Status      TeamStatus `gorm:"not null;size:16;index"`

	SkillsNeeded datatypes.JSONSlice[string]
	IsPaid       *bool
	Deadline     *time.Time `gorm:"type:date"`

	City             *string
	RentBudget       *float64
	GenderPreference *string `gorm:"size:16"`
	RoomType         *string `gorm:"size:16"`

	SportType *string
	Schedule  *string
	Location  *string

	Genre             *string
	InstrumentsNeeded datatypes.JSONSlice[string]

	Subject    *string
	StudyLevel *string `gorm:"size:32"`

	Destination *string
	TravelDates *string
	BudgetRange *string

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

func (TeamRecord) TableName() string {
	return "teams"
}

func (r *TeamRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID != "" {
		return nil
	}
	id, err := NewID()
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

// Record converts the team into its table row. The row shares no memory
// with the team.
func (t *Team) Record() *TeamRecord {
	in := t.Input()
	r := &TeamRecord{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		CreatorID:   t.CreatorID,
		TeamType:    t.Type(),
		TeamSize:    clone(t.Size),
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,

		IsPaid:           clone(in.IsPaid),
		City:             optional(in.City),
		RentBudget:       clone(in.RentBudget),
		GenderPreference: optional(string(in.GenderPreference)),
		RoomType:         optional(string(in.RoomType)),
		SportType:        optional(in.SportType),
		Schedule:         optional(in.Schedule),
		Location:         optional(in.Location),
		Genre:            optional(in.Genre),
		Subject:          optional(in.Subject),
		StudyLevel:       optional(string(in.StudyLevel)),
		Destination:      optional(in.Destination),
		TravelDates:      optional(in.TravelDates),
		BudgetRange:      optional(in.BudgetRange),
	}
	if len(in.SkillsNeeded) > 0 {
		r.SkillsNeeded = datatypes.JSONSlice[string](append([]string(nil), in.SkillsNeeded...))
	}
	if len(in.InstrumentsNeeded) > 0 {
		r.InstrumentsNeeded = datatypes.JSONSlice[string](append([]string(nil), in.InstrumentsNeeded...))
	}
	if p, ok := t.Details.(ProjectDetails); ok && p.Deadline != nil {
		d := *p.Deadline
		r.Deadline = &d
	}
	return r
}

// Team converts a row back into a Team. Columns of other categories are
// ignored even when the row carries values for them. The result shares no
// memory with the row.
func (r *TeamRecord) Team() (*Team, error) {
	in := TeamInput{
		Name:              r.Name,
		Description:       r.Description,
		TeamType:          r.TeamType,
		SkillsNeeded:      []string(r.SkillsNeeded),
		IsPaid:            clone(r.IsPaid),
		City:              deref(r.City),
		RentBudget:        clone(r.RentBudget),
		GenderPreference:  GenderPreference(deref(r.GenderPreference)),
		RoomType:          RoomType(deref(r.RoomType)),
		SportType:         deref(r.SportType),
		Schedule:          deref(r.Schedule),
		Location:          deref(r.Location),
		Genre:             deref(r.Genre),
		InstrumentsNeeded: []string(r.InstrumentsNeeded),
		Subject:           deref(r.Subject),
		StudyLevel:        StudyLevel(deref(r.StudyLevel)),
		Destination:       deref(r.Destination),
		TravelDates:       deref(r.TravelDates),
		BudgetRange:       deref(r.BudgetRange),
	}
	if r.Deadline != nil {
		in.Deadline = r.Deadline.Format(DateLayout)
	}

	details, err := in.details()
	if err != nil {
		return nil, fmt.Errorf("team %s: %w", r.ID, err)
	}
	return &Team{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatorID:   r.CreatorID,
		Size:        clone(r.TeamSize),
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Details:     details,
	}, nil
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
