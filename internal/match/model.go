package match

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/thesrcielos/PadelTracker/internal/validation"
)

type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
)

func (r Result) Valid() bool {
	return r == ResultWin || r == ResultLoss
}

// DateLayout is the calendar date format matches are entered with.
const DateLayout = "2006-01-02"

type Match struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        string    `gorm:"type:uuid;index;not null" json:"userId"`
	Date          time.Time `gorm:"type:date;not null" json:"date"`
	Opponent      string    `gorm:"not null" json:"opponent"`
	Result        Result    `gorm:"type:varchar(8);not null" json:"result"`
	Score         string    `gorm:"not null" json:"score"`
	Location      string    `gorm:"not null" json:"location"`
	CreatedAt     time.Time `json:"createdAt"`
	FormattedDate string    `gorm:"-" json:"formattedDate,omitempty"`
}

// NewMatch is the add-match form.
type NewMatch struct {
	Date     string `json:"date"`
	Opponent string `json:"opponent"`
	Result   Result `json:"result"`
	Score    string `json:"score"`
	Location string `json:"location"`
}

const (
	MsgOpponentTooShort = "Opponent must be at least 2 characters"
	MsgResultInvalid    = "Result must be win or loss"
	MsgScoreRequired    = "Score is required"
	MsgLocationTooShort = "Location must be at least 2 characters"
	MsgDateRequired     = "Date is required"
	MsgDateInvalid      = "Date is not valid"
)

func (n NewMatch) Validate() validation.Result {
	switch {
	case utf8.RuneCountInString(strings.TrimSpace(n.Opponent)) < 2:
		return validation.Result{Message: MsgOpponentTooShort}
	case !n.Result.Valid():
		return validation.Result{Message: MsgResultInvalid}
	case strings.TrimSpace(n.Score) == "":
		return validation.Result{Message: MsgScoreRequired}
	case utf8.RuneCountInString(strings.TrimSpace(n.Location)) < 2:
		return validation.Result{Message: MsgLocationTooShort}
	case strings.TrimSpace(n.Date) == "":
		return validation.Result{Message: MsgDateRequired}
	}
	if _, err := time.Parse(DateLayout, n.Date); err != nil {
		return validation.Result{Message: MsgDateInvalid}
	}
	return validation.Result{Valid: true}
}

// PerformanceBucket is the running win/loss count of one user in one month.
type PerformanceBucket struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id,omitempty"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_performance_user_month" json:"-"`
	Month     string    `gorm:"type:varchar(3);not null;uniqueIndex:idx_performance_user_month" json:"month"`
	Wins      int       `gorm:"not null;default:0" json:"wins"`
	Losses    int       `gorm:"not null;default:0" json:"losses"`
	CreatedAt time.Time `json:"-"`
}

func (PerformanceBucket) TableName() string {
	return "performance"
}

// Record counts one more match with result r.
func (b *PerformanceBucket) Record(r Result) {
	if r == ResultWin {
		b.Wins++
	} else {
		b.Losses++
	}
}

type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// NoChange is the streak trend value when the streak did not move.
const NoChange = "No change"

type Stats struct {
	Total            int    `json:"total"`
	Wins             int    `json:"wins"`
	Losses           int    `json:"losses"`
	ThisMonth        int    `json:"thisMonth"`
	LastMonth        int    `json:"lastMonth"`
	Trend            Trend  `json:"trend"`
	TrendValue       string `json:"trendValue"`
	Streak           int    `json:"streak"`
	StreakResult     Result `json:"streakResult,omitempty"`
	StreakTrend      Trend  `json:"streakTrend"`
	StreakTrendValue string `json:"streakTrendValue"`
	WinRate          int    `json:"winRate"`
}
