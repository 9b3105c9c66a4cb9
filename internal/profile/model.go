package profile

import (
	"time"

	"github.com/thesrcielos/PadelTracker/internal/validation"
)

const DefaultLevel = 1.0

// Profile is the player row keyed by the auth user id.
type Profile struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Level     float64   `gorm:"not null;default:1" json:"level"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func New(userID, name string) *Profile {
	return &Profile{ID: userID, Name: name, Level: DefaultLevel}
}

// Updates is a partial profile edit; nil fields are left alone.
type Updates struct {
	Name      *string  `json:"name,omitempty"`
	Level     *float64 `json:"level,omitempty"`
	AvatarURL *string  `json:"avatarUrl,omitempty"`
}

// Empty reports whether the edit sets no field.
func (u Updates) Empty() bool {
	return u.Name == nil && u.Level == nil && u.AvatarURL == nil
}

// Validate checks the fields that are set.
func (u Updates) Validate() validation.Result {
	if u.Name != nil {
		if r := validation.ValidateName(*u.Name); !r.Valid {
			return r
		}
	}
	if u.Level != nil && *u.Level <= 0 {
		return validation.Result{Valid: false, Message: "Level must be positive"}
	}
	return validation.Result{Valid: true}
}

// Columns renders the set fields as a gorm update map.
func (u Updates) Columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.Level != nil {
		cols["level"] = *u.Level
	}
	if u.AvatarURL != nil {
		cols["avatar_url"] = *u.AvatarURL
	}
	return cols
}

// Apply merges the set fields into p.
func (u Updates) Apply(p *Profile) {
	if p == nil {
		return
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Level != nil {
		p.Level = *u.Level
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
}
