package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"gorm.io/gorm"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	MarkEmailConfirmed(ctx context.Context, id string, at time.Time) error
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) CreateUser(ctx context.Context, u *User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.NewAppError(422, msgAlreadyRegistered, err)
		}
		return apperrors.NewAppError(500, "Error creating user", err)
	}
	return nil
}

// FindByEmail returns nil without error when no user has that email.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "Error fetching user", err)
	}
	return &u, nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewAppError(500, "Error fetching user", err)
	}
	return &u, nil
}

func (r *GormUserRepository) MarkEmailConfirmed(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("email_confirmed_at", at).Error
	if err != nil {
		return apperrors.NewAppError(500, "Error confirming email", err)
	}
	return nil
}
