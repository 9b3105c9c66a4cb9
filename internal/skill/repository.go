package skill

import (
	"context"
	"errors"

	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"gorm.io/gorm"
)

type Repository interface {
	List(ctx context.Context, userID string) ([]Skill, error)
	Find(ctx context.Context, userID, name string) (*Skill, error)
	Insert(ctx context.Context, s *Skill) error
	UpdateValue(ctx context.Context, id string, value int) error
	ListAssessments(ctx context.Context, userID string) ([]Assessment, error)
	InsertAssessment(ctx context.Context, a *Assessment) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) List(ctx context.Context, userID string) ([]Skill, error) {
	var skills []Skill
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&skills).Error; err != nil {
		return nil, apperrors.NewAppError(500, "Error fetching skills", err)
	}
	return skills, nil
}

// Find returns nil without error when the user has not rated name yet.
func (r *GormRepository) Find(ctx context.Context, userID, name string) (*Skill, error) {
	var s Skill
	err := r.db.WithContext(ctx).Where("user_id = ? AND name = ?", userID, name).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "Error fetching skills", err)
	}
	return &s, nil
}

func (r *GormRepository) Insert(ctx context.Context, s *Skill) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return apperrors.NewAppError(500, "Error saving skill", err)
	}
	return nil
}

func (r *GormRepository) UpdateValue(ctx context.Context, id string, value int) error {
	err := r.db.WithContext(ctx).Model(&Skill{}).Where("id = ?", id).Update("value", value).Error
	if err != nil {
		return apperrors.NewAppError(500, "Error saving skill", err)
	}
	return nil
}

func (r *GormRepository) ListAssessments(ctx context.Context, userID string) ([]Assessment, error) {
	var assessments []Assessment
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date desc, created_at desc").Find(&assessments).Error
	if err != nil {
		return nil, apperrors.NewAppError(500, "Error fetching assessments", err)
	}
	return assessments, nil
}

func (r *GormRepository) InsertAssessment(ctx context.Context, a *Assessment) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return apperrors.NewAppError(500, "Error saving assessment", err)
	}
	return nil
}
