package match

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) ListMatches(ctx context.Context, userID string) ([]Match, error) {
	args := m.Called(ctx, userID)
	matches, _ := args.Get(0).([]Match)
	return matches, args.Error(1)
}

func (m *RepositoryMock) InsertMatch(ctx context.Context, match *Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *RepositoryMock) ListBuckets(ctx context.Context, userID string) ([]PerformanceBucket, error) {
	args := m.Called(ctx, userID)
	buckets, _ := args.Get(0).([]PerformanceBucket)
	return buckets, args.Error(1)
}

func (m *RepositoryMock) FindBucket(ctx context.Context, userID, month string) (*PerformanceBucket, error) {
	args := m.Called(ctx, userID, month)
	b, _ := args.Get(0).(*PerformanceBucket)
	return b, args.Error(1)
}

func (m *RepositoryMock) SaveBucket(ctx context.Context, b *PerformanceBucket) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
