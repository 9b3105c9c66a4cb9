package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"github.com/thesrcielos/PadelTracker/internal/notify"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
)

func newTestAggregator(userID string) (*Aggregator, *RepositoryMock, *notify.Recorder) {
	repo := &RepositoryMock{}
	notes := &notify.Recorder{}
	a := NewAggregator(repo, StaticUser(userID), notes, logger.NewNop())
	a.now = func() time.Time { return june20 }
	return a, repo, notes
}

func juneWin() NewMatch {
	return NewMatch{Date: "2024-06-15", Opponent: "Club Norte", Result: ResultWin, Score: "6-4 6-3", Location: "Madrid"}
}

func TestAggregator_AddMatch_NoUser(t *testing.T) {
	a, repo, notes := newTestAggregator("")

	_, err := a.AddMatch(context.Background(), juneWin())
	assert.ErrorIs(t, err, apperrors.ErrNoSession)
	assert.Equal(t, apperrors.KindSession, apperrors.KindOf(err))
	repo.AssertNotCalled(t, "InsertMatch", mock.Anything, mock.Anything)
	assert.Len(t, notes.All(), 1)
}

func TestAggregator_AddMatch_Validation(t *testing.T) {
	tests := []struct {
		name string
		edit func(*NewMatch)
		msg  string
	}{
		{"short opponent", func(n *NewMatch) { n.Opponent = "X" }, MsgOpponentTooShort},
		{"bad result", func(n *NewMatch) { n.Result = "draw" }, MsgResultInvalid},
		{"empty score", func(n *NewMatch) { n.Score = " " }, MsgScoreRequired},
		{"short location", func(n *NewMatch) { n.Location = "M" }, MsgLocationTooShort},
		{"no date", func(n *NewMatch) { n.Date = "" }, MsgDateRequired},
		{"bad date", func(n *NewMatch) { n.Date = "15/06/2024" }, MsgDateInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, repo, _ := newTestAggregator("u1")
			nm := juneWin()
			tt.edit(&nm)

			_, err := a.AddMatch(context.Background(), nm)
			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.msg, appErr.Message)
			repo.AssertNotCalled(t, "InsertMatch", mock.Anything, mock.Anything)
		})
	}
}

func TestAggregator_AddMatch_CreatesBucket(t *testing.T) {
	a, repo, _ := newTestAggregator("u1")
	repo.On("InsertMatch", mock.Anything, mock.AnythingOfType("*match.Match")).Return(nil)
	repo.On("FindBucket", mock.Anything, "u1", "Jun").Return(nil, nil)
	repo.On("SaveBucket", mock.Anything, mock.MatchedBy(func(b *PerformanceBucket) bool {
		return b.UserID == "u1" && b.Month == "Jun" && b.Wins == 1 && b.Losses == 0 && b.ID != ""
	})).Return(nil)

	m, err := a.AddMatch(context.Background(), juneWin())
	require.NoError(t, err)
	assert.Equal(t, "u1", m.UserID)
	assert.Equal(t, day(2024, time.June, 15), m.Date)
	repo.AssertExpectations(t)
}

func TestAggregator_AddMatch_UpdatesBucket(t *testing.T) {
	a, repo, _ := newTestAggregator("u1")
	existing := &PerformanceBucket{ID: "b1", UserID: "u1", Month: "Jun", Wins: 2, Losses: 1}
	repo.On("InsertMatch", mock.Anything, mock.Anything).Return(nil)
	repo.On("FindBucket", mock.Anything, "u1", "Jun").Return(existing, nil)
	repo.On("SaveBucket", mock.Anything, mock.MatchedBy(func(b *PerformanceBucket) bool {
		return b.ID == "b1" && b.Wins == 3 && b.Losses == 1
	})).Return(nil)

	_, err := a.AddMatch(context.Background(), juneWin())
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestAggregator_AddMatch_BucketFailureDoesNotFail(t *testing.T) {
	a, repo, notes := newTestAggregator("u1")
	repo.On("ListMatches", mock.Anything, "u1").Return([]Match{}, nil)
	repo.On("InsertMatch", mock.Anything, mock.Anything).Return(nil)
	repo.On("FindBucket", mock.Anything, "u1", "Jun").Return(nil, apperrors.NewAppError(500, "Error fetching performance", errors.New("timeout")))
	require.NoError(t, a.Load(context.Background()))

	m, err := a.AddMatch(context.Background(), juneWin())
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 1, a.Stats().Total)

	var destructive int
	for _, n := range notes.All() {
		if n.Variant == notify.VariantDestructive {
			destructive++
		}
	}
	assert.Equal(t, 1, destructive)
	repo.AssertNotCalled(t, "SaveBucket", mock.Anything, mock.Anything)
}

func TestAggregator_AddMatch_InsertFailure(t *testing.T) {
	a, repo, _ := newTestAggregator("u1")
	repo.On("InsertMatch", mock.Anything, mock.Anything).Return(apperrors.NewAppError(500, "Error saving match", errors.New("conn reset")))

	_, err := a.AddMatch(context.Background(), juneWin())
	assert.Error(t, err)
	assert.Equal(t, 0, a.Stats().Total)
	repo.AssertNotCalled(t, "FindBucket", mock.Anything, mock.Anything, mock.Anything)
}

func TestAggregator_LoadThenAdd(t *testing.T) {
	a, repo, _ := newTestAggregator("u1")
	stored := []Match{
		{ID: "m3", Result: ResultWin, Date: day(2024, time.June, 18)},
		{ID: "m2", Result: ResultLoss, Date: day(2024, time.June, 10)},
		{ID: "m1", Result: ResultLoss, Date: day(2024, time.May, 2)},
	}
	repo.On("ListMatches", mock.Anything, "u1").Return(stored, nil)
	repo.On("InsertMatch", mock.Anything, mock.Anything).Return(nil)
	repo.On("FindBucket", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("SaveBucket", mock.Anything, mock.Anything).Return(nil)

	var views []View
	a.OnChange(func(v View) { views = append(views, v) })

	require.NoError(t, a.Load(context.Background()))
	assert.Equal(t, 1, a.Stats().Streak)
	assert.Equal(t, "18 Jun", a.View().Matches[0].FormattedDate)

	m, err := a.AddMatch(context.Background(), juneWin())
	require.NoError(t, err)

	v := a.View()
	require.Len(t, v.Matches, 4)
	// the 15th goes between the 18th and the 10th
	assert.Equal(t, []string{"m3", m.ID, "m2", "m1"}, ids(v.Matches))
	assert.Equal(t, 4, v.Stats.Total)
	assert.Equal(t, 2, v.Stats.Streak)
	assert.Equal(t, 3, v.Stats.ThisMonth)
	assert.NotEmpty(t, views)
	assert.False(t, views[len(views)-1].Loading)
}

func TestAggregator_LoadFailureIsKept(t *testing.T) {
	a, repo, _ := newTestAggregator("u1")
	repo.On("ListMatches", mock.Anything, "u1").Return(nil, apperrors.NewAppError(500, "Error fetching matches", errors.New("timeout")))

	err := a.Load(context.Background())
	assert.Error(t, err)
	v := a.View()
	assert.Contains(t, v.Error, "Error fetching matches")
	assert.False(t, v.Loading)
}

func TestAggregator_LastLoadWins(t *testing.T) {
	a, repo, _ := newTestAggregator("u1")
	started := make(chan struct{})
	release := make(chan struct{})
	old := []Match{{ID: "old", Result: ResultLoss, Date: day(2024, time.June, 1)}}
	fresh := []Match{{ID: "fresh", Result: ResultWin, Date: day(2024, time.June, 2)}}

	repo.On("ListMatches", mock.Anything, "u1").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(old, nil).Once()
	repo.On("ListMatches", mock.Anything, "u1").Return(fresh, nil).Once()

	done := make(chan error)
	go func() { done <- a.Load(context.Background()) }()
	<-started

	require.NoError(t, a.Load(context.Background()))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []string{"fresh"}, ids(a.View().Matches))
}

func TestAggregator_AddDuringLoadIsReplayed(t *testing.T) {
	a, repo, _ := newTestAggregator("u1")
	started := make(chan struct{})
	release := make(chan struct{})
	stored := []Match{{ID: "m1", Result: ResultLoss, Date: day(2024, time.June, 1)}}

	repo.On("ListMatches", mock.Anything, "u1").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(stored, nil)
	repo.On("InsertMatch", mock.Anything, mock.Anything).Return(nil)
	repo.On("FindBucket", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("SaveBucket", mock.Anything, mock.Anything).Return(nil)

	done := make(chan error)
	go func() { done <- a.Load(context.Background()) }()
	<-started

	m, err := a.AddMatch(context.Background(), juneWin())
	require.NoError(t, err)
	assert.True(t, a.View().Loading)

	close(release)
	require.NoError(t, <-done)

	v := a.View()
	assert.Equal(t, []string{m.ID, "m1"}, ids(v.Matches))
	assert.Equal(t, 2, v.Stats.Total)
	assert.Equal(t, 1, v.Stats.Wins)
}

func TestAggregator_AddMatchFeedsPerformance(t *testing.T) {
	repo := &RepositoryMock{}
	perf := NewPerformanceAggregator(repo, StaticUser("u1"), logger.NewNop())
	perf.now = func() time.Time { return june20 }
	a := NewAggregator(repo, StaticUser("u1"), notify.Discard, logger.NewNop(), WithPerformance(perf))

	repo.On("ListBuckets", mock.Anything, "u1").Return([]PerformanceBucket{}, nil)
	repo.On("InsertMatch", mock.Anything, mock.Anything).Return(nil)
	repo.On("FindBucket", mock.Anything, "u1", "Jun").Return(nil, nil)
	repo.On("SaveBucket", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, perf.Load(context.Background()))
	assert.Len(t, perf.View().Months, DefaultMonths)

	_, err := a.AddMatch(context.Background(), juneWin())
	require.NoError(t, err)
	assert.Equal(t, []MonthPerformance{{Month: "Jun", Wins: 1}}, perf.View().Months)
}

func ids(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.ID
	}
	return out
}
