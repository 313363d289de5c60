package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID             string                      `json:"id" gorm:"primaryKey;size:36"`
	Name           string                      `json:"name"`
	Email          string                      `gorm:"not null;unique" json:"email"`
	Bio            string                      `json:"bio"`
	Location       string                      `json:"location"`
	Skills         datatypes.JSONSlice[string] `json:"skills"`
	AvatarURL      string                      `json:"avatar_url"`
	HashedPassword string                      `json:"-"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

// NewID returns a UUID v7 string. v7 ids sort by creation time, which keeps
// B-tree indexes on them compact.
func NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID != "" {
		return nil
	}
	u.ID, err = NewID()
	return err
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.HashedPassword = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	if u.HashedPassword == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
	return err == nil
}

// SetSkills stores skills trimmed and without duplicates.
func (u *User) SetSkills(skills []string) {
	u.Skills = datatypes.JSONSlice[string](normalizeList(skills))
}

// GetDisplayName returns the user's display name
func (u *User) GetDisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Name:      u.GetDisplayName(),
		AvatarURL: u.AvatarURL,
	}
}

// UserSummary is the public part of a profile shown to team creators.
type UserSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
