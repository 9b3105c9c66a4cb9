package profile

import (
	"context"
	"errors"

	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Insert(ctx context.Context, p *Profile) error
	Update(ctx context.Context, userID string, updates Updates) (*Profile, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Get returns nil without error when the user has no profile row yet.
func (r *GormRepository) Get(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "Error fetching profile", err)
	}
	return &p, nil
}

func (r *GormRepository) Insert(ctx context.Context, p *Profile) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return apperrors.NewAppError(500, "Error creating profile", err)
	}
	return nil
}

func (r *GormRepository) Update(ctx context.Context, userID string, updates Updates) (*Profile, error) {
	res := r.db.WithContext(ctx).Model(&Profile{}).Where("id = ?", userID).Updates(updates.Columns())
	if res.Error != nil {
		return nil, apperrors.NewAppError(500, "Error updating profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NewAppError(404, "Profile not found", nil)
	}
	return r.Get(ctx, userID)
}
