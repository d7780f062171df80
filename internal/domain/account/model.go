package account

import (
	"time"

	"github.com/rpggio/stepwise/internal/domain/catalog"
)

// Role controls access to admin-only operations.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Preferences captures what a user wants to work on.
type Preferences struct {
	SkillGoals           []catalog.Category `json:"skillGoals"`
	DifficultyPreference catalog.Difficulty `json:"difficultyPreference"`
	AvailableTime        int                `json:"availableTime"`
}

// DefaultPreferences returns the preferences given to new accounts.
func DefaultPreferences() Preferences {
	return Preferences{
		SkillGoals:           []catalog.Category{},
		DifficultyPreference: catalog.DifficultyMedium,
		AvailableTime:        30,
	}
}

// Streak counts consecutive calendar days with at least one completion.
type Streak struct {
	Current          int        `json:"current"`
	Longest          int        `json:"longest"`
	LastActivityDate *time.Time `json:"lastActivityDate"`
}

// User is an account. Password holds whatever the configured CredentialVerifier stored.
type User struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Username    string      `json:"username"`
	Password    string      `json:"-"`
	Role        Role        `json:"role"`
	Preferences Preferences `json:"preferences"`
	Streak      Streak      `json:"streak"`
	Badges      []string    `json:"badges"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// HasBadge reports whether the user already earned the named badge.
func (u *User) HasBadge(name string) bool {
	for _, badge := range u.Badges {
		if badge == name {
			return true
		}
	}
	return false
}
