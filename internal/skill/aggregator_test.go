package skill

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"github.com/thesrcielos/PadelTracker/internal/match"
	"github.com/thesrcielos/PadelTracker/internal/notify"
	"github.com/thesrcielos/PadelTracker/pkg/logger"
)

func newTestAggregator(userID string) (*Aggregator, *RepositoryMock, *notify.Recorder) {
	repo := &RepositoryMock{}
	notes := &notify.Recorder{}
	return NewAggregator(repo, match.StaticUser(userID), notes, logger.NewNop()), repo, notes
}

func TestBestSkill(t *testing.T) {
	assert.Equal(t, Best{}, BestSkill(nil))
	assert.Equal(t, Best{"Forehand", 85}, BestSkill([]Skill{{Name: "Forehand", Value: 85}, {Name: "Backhand", Value: 85}}))
	assert.Equal(t, Best{"Smash", 90}, BestSkill([]Skill{{Name: "Lob", Value: 40}, {Name: "Smash", Value: 90}, {Name: "Serve", Value: 70}}))
	assert.Equal(t, Best{"Lob", 0}, BestSkill([]Skill{{Name: "Lob", Value: 0}}))
}

func TestImprovement(t *testing.T) {
	assert.Equal(t, 0, Improvement(nil))
	assert.Equal(t, 7, Improvement([]Skill{{Value: 72}}))
	// 65 / 10 rounds half away from zero
	assert.Equal(t, 7, Improvement([]Skill{{Value: 60}, {Value: 70}}))
	assert.Equal(t, 5, Improvement([]Skill{{Value: 50}, {Value: 50}, {Value: 40}}))
}

func TestAggregator_UpdateSkillUpserts(t *testing.T) {
	a, repo, _ := newTestAggregator("u1")
	ctx := context.Background()

	var inserted *Skill
	repo.On("Find", mock.Anything, "u1", "Serve").Return(nil, nil).Once()
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(s *Skill) bool {
		return s.UserID == "u1" && s.Name == "Serve" && s.Value == 72
	})).Run(func(args mock.Arguments) {
		inserted = args.Get(1).(*Skill)
	}).Return(nil).Once()
	repo.On("List", mock.Anything, "u1").Return([]Skill{{ID: "s1", Name: "Serve", Value: 72}}, nil).Once()

	require.NoError(t, a.UpdateSkill(ctx, "Serve", 72))
	require.NotNil(t, inserted)
	assert.Equal(t, Best{"Serve", 72}, a.View().BestSkill)

	repo.On("Find", mock.Anything, "u1", "Serve").Return(&Skill{ID: "s1", UserID: "u1", Name: "Serve", Value: 72}, nil).Once()
	repo.On("UpdateValue", mock.Anything, "s1", 90).Return(nil).Once()
	repo.On("List", mock.Anything, "u1").Return([]Skill{{ID: "s1", Name: "Serve", Value: 90}}, nil).Once()

	require.NoError(t, a.UpdateSkill(ctx, "Serve", 90))
	v := a.View()
	require.Len(t, v.Skills, 1)
	assert.Equal(t, 90, v.Skills[0].Value)
	assert.Equal(t, FullMark, v.Skills[0].FullMark)
	assert.Equal(t, 9, v.Improvement)
	repo.AssertNumberOfCalls(t, "Insert", 1)
	repo.AssertExpectations(t)
}

func TestAggregator_UpdateSkillRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		skill string
		value int
		msg   string
	}{
		{"blank name", "  ", 50, MsgNameRequired},
		{"negative", "Lob", -1, MsgValueRange},
		{"over the top", "Lob", 101, MsgValueRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, repo, notes := newTestAggregator("u1")
			err := a.UpdateSkill(context.Background(), tt.skill, tt.value)
			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.msg, appErr.Message)
			repo.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)
			last, _ := notes.Last()
			assert.Equal(t, notify.VariantDestructive, last.Variant)
		})
	}
}

func TestAggregator_UpdateSkillWithoutUser(t *testing.T) {
	a, repo, _ := newTestAggregator("")
	err := a.UpdateSkill(context.Background(), "Serve", 70)
	assert.ErrorIs(t, err, apperrors.ErrNoSession)
	repo.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)
}

func TestAggregator_UpdateSkillsBatch(t *testing.T) {
	a, repo, notes := newTestAggregator("u1")
	repo.On("Find", mock.Anything, "u1", mock.Anything).Return(nil, nil)
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	repo.On("List", mock.Anything, "u1").Return([]Skill{{Name: "Forehand", Value: 50}}, nil)

	require.NoError(t, a.UpdateSkills(context.Background(), DefaultRatings()))
	repo.AssertNumberOfCalls(t, "Insert", len(DefaultRatings()))
	repo.AssertNumberOfCalls(t, "List", 1)
	assert.Len(t, notes.All(), 1)
	last, _ := notes.Last()
	assert.Equal(t, "Skills updated", last.Title)
}

func TestAggregator_UpdateSkillsStopsAtFailure(t *testing.T) {
	a, repo, notes := newTestAggregator("u1")
	repo.On("Find", mock.Anything, "u1", "Forehand").Return(nil, nil)
	repo.On("Find", mock.Anything, "u1", "Backhand").Return(nil, errors.New("timeout"))
	repo.On("Insert", mock.Anything, mock.Anything).Return(nil)
	repo.On("List", mock.Anything, "u1").Return([]Skill{{Name: "Forehand", Value: 50}}, nil)

	err := a.UpdateSkills(context.Background(), DefaultRatings())
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Find", mock.Anything, "u1", "Volley")
	last, _ := notes.Last()
	assert.Equal(t, notify.VariantDestructive, last.Variant)
	assert.Len(t, a.View().Skills, 1)
}

func TestAggregator_LoadFailure(t *testing.T) {
	a, repo, _ := newTestAggregator("u1")
	repo.On("List", mock.Anything, "u1").Return(nil, apperrors.NewAppError(500, "Error fetching skills", errors.New("timeout")))

	assert.Error(t, a.Load(context.Background()))
	v := a.View()
	assert.Contains(t, v.Error, "Error fetching skills")
	assert.Equal(t, Best{}, v.BestSkill)
	assert.Zero(t, v.Improvement)
}

func TestAggregator_LastLoadWins(t *testing.T) {
	a, repo, _ := newTestAggregator("u1")
	started := make(chan struct{})
	release := make(chan struct{})
	repo.On("List", mock.Anything, "u1").Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return([]Skill{{Name: "Lob", Value: 10}}, nil).Once()
	repo.On("List", mock.Anything, "u1").Return([]Skill{{Name: "Lob", Value: 80}}, nil).Once()

	done := make(chan error)
	go func() { done <- a.Load(context.Background()) }()
	<-started
	require.NoError(t, a.Load(context.Background()))
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, Best{"Lob", 80}, a.View().BestSkill)
}

func TestCatalog(t *testing.T) {
	groups := Catalog()
	require.Len(t, groups, 4)
	assert.Equal(t, "Derecha", groups[0].Skills[0])
	assert.Equal(t, "Globo ofensivo", groups[3].Skills[0])
	assert.Len(t, AllSkills(), 20)
	assert.Equal(t, []string{"D-", "D", "D+", "C-", "C", "C+", "B-", "B", "B+", "A"}, PlayerLevels())

	groups[0].Skills[0] = "changed"
	assert.Equal(t, "Derecha", Catalog()[0].Skills[0])
}
