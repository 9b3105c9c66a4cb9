package skill

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) List(ctx context.Context, userID string) ([]Skill, error) {
	args := m.Called(ctx, userID)
	skills, _ := args.Get(0).([]Skill)
	return skills, args.Error(1)
}

func (m *RepositoryMock) Find(ctx context.Context, userID, name string) (*Skill, error) {
	args := m.Called(ctx, userID, name)
	s, _ := args.Get(0).(*Skill)
	return s, args.Error(1)
}

func (m *RepositoryMock) Insert(ctx context.Context, s *Skill) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *RepositoryMock) UpdateValue(ctx context.Context, id string, value int) error {
	args := m.Called(ctx, id, value)
	return args.Error(0)
}

func (m *RepositoryMock) ListAssessments(ctx context.Context, userID string) ([]Assessment, error) {
	args := m.Called(ctx, userID)
	assessments, _ := args.Get(0).([]Assessment)
	return assessments, args.Error(1)
}

func (m *RepositoryMock) InsertAssessment(ctx context.Context, a *Assessment) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
