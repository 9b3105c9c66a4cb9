package skill

import (
	"sort"
	"time"
)

const (
	MsgAssessmentEmpty     = "Select at least one skill"
	MsgAssessmentDuplicate = "Each skill can only be rated once per assessment"
)

// Assessment is a dated snapshot of the ratings a player entered in one go.
type Assessment struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"-"`
	Date      time.Time `gorm:"type:date;not null" json:"date"`
	Notes     string    `json:"notes,omitempty"`
	Ratings   []Rating  `gorm:"serializer:json;type:jsonb;not null" json:"skills"`
	CreatedAt time.Time `json:"createdAt"`
}

// AssessmentEntry is an assessment with the change of each of its ratings
// against the assessment before it. The oldest entry has no changes.
type AssessmentEntry struct {
	Assessment
	Changes map[string]int `json:"changes,omitempty"`
}

// History orders assessments newest first and works out each entry's
// changes. A skill missing from the previous assessment counts as 0.
func History(assessments []Assessment) []AssessmentEntry {
	sorted := make([]Assessment, len(assessments))
	copy(sorted, assessments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	entries := make([]AssessmentEntry, len(sorted))
	for i, a := range sorted {
		entries[i] = AssessmentEntry{Assessment: a}
		if i == len(sorted)-1 {
			continue
		}
		previous := make(map[string]int, len(sorted[i+1].Ratings))
		for _, r := range sorted[i+1].Ratings {
			previous[r.Name] = r.Value
		}
		entries[i].Changes = make(map[string]int, len(a.Ratings))
		for _, r := range a.Ratings {
			entries[i].Changes[r.Name] = r.Value - previous[r.Name]
		}
	}
	return entries
}
