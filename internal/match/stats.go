package match

import (
	"fmt"
	"math"
	"time"
)

var monthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthLabel is the three letter month name bucket rows are keyed by.
func MonthLabel(t time.Time) string {
	return monthLabels[t.Month()-1]
}

// RecentMonths returns the labels of the n months ending with now's month,
// oldest first.
func RecentMonths(now time.Time, n int) []string {
	labels := make([]string, n)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 0; i < n; i++ {
		labels[n-1-i] = MonthLabel(first.AddDate(0, -i, 0))
	}
	return labels
}

// ComputeStats derives the dashboard figures from matches ordered most
// recent first.
func ComputeStats(matches []Match, now time.Time) Stats {
	s := Stats{
		Trend:            TrendNeutral,
		TrendValue:       "0",
		StreakTrend:      TrendNeutral,
		StreakTrendValue: NoChange,
	}
	s.Total = len(matches)
	if s.Total == 0 {
		return s
	}

	thisYear, thisMonth := now.Year(), now.Month()
	prev := time.Date(thisYear, thisMonth, 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	for _, m := range matches {
		if m.Result == ResultWin {
			s.Wins++
		}
		// match dates are calendar days, compared without zone conversion
		switch y, mo := m.Date.Year(), m.Date.Month(); {
		case y == thisYear && mo == thisMonth:
			s.ThisMonth++
		case y == prev.Year() && mo == prev.Month():
			s.LastMonth++
		}
	}
	s.Losses = s.Total - s.Wins
	s.WinRate = int(math.Round(float64(s.Wins) * 100 / float64(s.Total)))
	s.Trend, s.TrendValue = compare(s.ThisMonth, s.LastMonth, "0")

	s.Streak = leadingRun(matches)
	s.StreakResult = matches[0].Result
	previous := leadingRun(matches[s.Streak:])
	s.StreakTrend, s.StreakTrendValue = compare(s.Streak, previous, NoChange)
	return s
}

// leadingRun counts the matches at the head of the list sharing the first
// one's result.
func leadingRun(matches []Match) int {
	if len(matches) == 0 {
		return 0
	}
	n := 1
	for n < len(matches) && matches[n].Result == matches[0].Result {
		n++
	}
	return n
}

func compare(current, previous int, neutral string) (Trend, string) {
	switch {
	case current > previous:
		return TrendUp, fmt.Sprintf("+%d", current-previous)
	case current < previous:
		return TrendDown, fmt.Sprintf("%d", current-previous)
	default:
		return TrendNeutral, neutral
	}
}
