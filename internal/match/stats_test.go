package match

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

var june20 = time.Date(2024, time.June, 20, 18, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func matchesOf(results ...Result) []Match {
	out := make([]Match, len(results))
	for i, r := range results {
		out[i] = Match{ID: string(rune('a' + i)), Result: r, Date: june20.AddDate(0, 0, -i)}
	}
	return out
}

func TestComputeStats_Streak(t *testing.T) {
	s := ComputeStats(matchesOf(ResultWin, ResultWin, ResultLoss, ResultWin), june20)
	assert.Equal(t, 2, s.Streak)
	assert.Equal(t, ResultWin, s.StreakResult)
	assert.Equal(t, TrendUp, s.StreakTrend)
	assert.Equal(t, "+1", s.StreakTrendValue)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 75, s.WinRate)
}

func TestComputeStats_LosingStreak(t *testing.T) {
	s := ComputeStats(matchesOf(ResultLoss, ResultWin, ResultWin, ResultWin), june20)
	assert.Equal(t, 1, s.Streak)
	assert.Equal(t, ResultLoss, s.StreakResult)
	assert.Equal(t, TrendDown, s.StreakTrend)
	assert.Equal(t, "-2", s.StreakTrendValue)
}

func TestComputeStats_Empty(t *testing.T) {
	s := ComputeStats(nil, june20)
	assert.Equal(t, Stats{
		Trend:            TrendNeutral,
		TrendValue:       "0",
		StreakTrend:      TrendNeutral,
		StreakTrendValue: NoChange,
	}, s)
}

func TestComputeStats_SingleMatch(t *testing.T) {
	s := ComputeStats(matchesOf(ResultLoss), june20)
	assert.Equal(t, 1, s.Streak)
	assert.Equal(t, TrendUp, s.StreakTrend)
	assert.Equal(t, 0, s.WinRate)
}

func TestComputeStats_MonthTrend(t *testing.T) {
	matches := []Match{
		{Result: ResultWin, Date: day(2024, time.June, 18)},
		{Result: ResultWin, Date: day(2024, time.June, 10)},
		{Result: ResultLoss, Date: day(2024, time.June, 1)},
		{Result: ResultLoss, Date: day(2024, time.May, 31)},
		{Result: ResultWin, Date: day(2023, time.June, 15)},
	}
	s := ComputeStats(matches, june20)
	assert.Equal(t, 3, s.ThisMonth)
	assert.Equal(t, 1, s.LastMonth)
	assert.Equal(t, TrendUp, s.Trend)
	assert.Equal(t, "+2", s.TrendValue)

	s = ComputeStats(matches, day(2024, time.July, 2))
	assert.Equal(t, 0, s.ThisMonth)
	assert.Equal(t, 3, s.LastMonth)
	assert.Equal(t, TrendDown, s.Trend)
	assert.Equal(t, "-3", s.TrendValue)
}

func TestComputeStats_JanuaryComparesWithDecember(t *testing.T) {
	matches := []Match{
		{Result: ResultWin, Date: day(2025, time.January, 3)},
		{Result: ResultWin, Date: day(2024, time.December, 30)},
	}
	s := ComputeStats(matches, day(2025, time.January, 10))
	assert.Equal(t, 1, s.ThisMonth)
	assert.Equal(t, 1, s.LastMonth)
	assert.Equal(t, TrendNeutral, s.Trend)
	assert.Equal(t, "0", s.TrendValue)
}

func TestMonthLabels(t *testing.T) {
	assert.Equal(t, "Jun", MonthLabel(june20))
	assert.Equal(t, "Dec", MonthLabel(day(2024, time.December, 31)))
	assert.Equal(t, []string{"Sep", "Oct", "Nov", "Dec", "Jan", "Feb"}, RecentMonths(day(2025, time.February, 28), 6))
}

func TestComputeStats_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// true is a win
	genResults := gen.SliceOf(gen.Bool())

	properties.Property("wins and losses add up to total", prop.ForAll(
		func(results []bool) bool {
			s := ComputeStats(toMatches(results), june20)
			return s.Wins+s.Losses == s.Total && s.Total == len(results)
		},
		genResults,
	))

	properties.Property("streak is the leading same-result run", prop.ForAll(
		func(results []bool) bool {
			matches := toMatches(results)
			s := ComputeStats(matches, june20)
			if len(matches) == 0 {
				return s.Streak == 0
			}
			if s.Streak < 1 || s.Streak > len(matches) {
				return false
			}
			for _, m := range matches[:s.Streak] {
				if m.Result != s.StreakResult {
					return false
				}
			}
			return s.Streak == len(matches) || matches[s.Streak].Result != s.StreakResult
		},
		genResults,
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func toMatches(results []bool) []Match {
	rs := make([]Result, len(results))
	for i, won := range results {
		rs[i] = ResultLoss
		if won {
			rs[i] = ResultWin
		}
	}
	return matchesOf(rs...)
}
