package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookly/bookly/internal/models"
)

type UserRepo struct {
	DB *gorm.DB
}

// ByEmail returns (nil, nil) when no user carries the email.
func (r *UserRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) ByUID(ctx context.Context, uid uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Where("uid = ?", uid).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

// Update patches only the given columns.
func (r *UserRepo) Update(ctx context.Context, uid uuid.UUID, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("uid = ?", uid).
		Updates(fields).Error
}
