package profile

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) Get(ctx context.Context, userID string) (*Profile, error) {
	args := m.Called(ctx, userID)
	p, _ := args.Get(0).(*Profile)
	return p, args.Error(1)
}

func (m *RepositoryMock) Insert(ctx context.Context, p *Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *RepositoryMock) Update(ctx context.Context, userID string, updates Updates) (*Profile, error) {
	args := m.Called(ctx, userID, updates)
	p, _ := args.Get(0).(*Profile)
	return p, args.Error(1)
}
