package match

import (
	"context"
	"errors"

	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"gorm.io/gorm"
)

type Repository interface {
	ListMatches(ctx context.Context, userID string) ([]Match, error)
	InsertMatch(ctx context.Context, m *Match) error
	ListBuckets(ctx context.Context, userID string) ([]PerformanceBucket, error)
	FindBucket(ctx context.Context, userID, month string) (*PerformanceBucket, error)
	SaveBucket(ctx context.Context, b *PerformanceBucket) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// ListMatches returns the user's matches, most recent first.
func (r *GormRepository) ListMatches(ctx context.Context, userID string) ([]Match, error) {
	var matches []Match
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Order("created_at DESC").
		Find(&matches).Error
	if err != nil {
		return nil, apperrors.NewAppError(500, "Error fetching matches", err)
	}
	return matches, nil
}

func (r *GormRepository) InsertMatch(ctx context.Context, m *Match) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return apperrors.NewAppError(500, "Error saving match", err)
	}
	return nil
}

// ListBuckets returns the user's buckets in creation order.
func (r *GormRepository) ListBuckets(ctx context.Context, userID string) ([]PerformanceBucket, error) {
	var buckets []PerformanceBucket
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&buckets).Error
	if err != nil {
		return nil, apperrors.NewAppError(500, "Error fetching performance", err)
	}
	return buckets, nil
}

// FindBucket returns nil without error when the month has no bucket yet.
func (r *GormRepository) FindBucket(ctx context.Context, userID, month string) (*PerformanceBucket, error) {
	var b PerformanceBucket
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND month = ?", userID, month).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "Error fetching performance", err)
	}
	return &b, nil
}

// SaveBucket inserts a new bucket or overwrites the counters of an
// existing one.
func (r *GormRepository) SaveBucket(ctx context.Context, b *PerformanceBucket) error {
	if err := r.db.WithContext(ctx).Save(b).Error; err != nil {
		return apperrors.NewAppError(500, "Error saving performance", err)
	}
	return nil
}
