// Package skill keeps a user's skill ratings and the figures derived from
// them.
package skill

import (
	"strings"
	"time"

	"github.com/thesrcielos/PadelTracker/internal/validation"
)

// FullMark is the top of the rating scale.
const FullMark = 100

type Skill struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_skills_user_name" json:"-"`
	Name      string    `gorm:"not null;uniqueIndex:idx_skills_user_name" json:"name"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	FullMark  int       `gorm:"-" json:"fullMark"`
}

// Rating is one skill value as entered by the user.
type Rating struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

const (
	MsgNameRequired = "Skill name is required"
	MsgValueRange   = "Skill value must be between 0 and 100"
)

func (r Rating) Validate() validation.Result {
	if strings.TrimSpace(r.Name) == "" {
		return validation.Result{Message: MsgNameRequired}
	}
	if r.Value < 0 || r.Value > FullMark {
		return validation.Result{Message: MsgValueRange}
	}
	return validation.Result{Valid: true}
}

// Best is the highest rated skill.
type Best struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}
