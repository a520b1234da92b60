package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookly/bookly/internal/models"
)

type ReviewRepo struct {
	DB *gorm.DB
}

func (r *ReviewRepo) ByUID(ctx context.Context, uid uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.DB.WithContext(ctx).Where("uid = ?", uid).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepo) ForBook(ctx context.Context, bookUID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.DB.WithContext(ctx).
		Where("book_uid = ?", bookUID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepo) Create(ctx context.Context, review *models.Review) error {
	return r.DB.WithContext(ctx).Create(review).Error
}

func (r *ReviewRepo) Delete(ctx context.Context, uid uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("uid = ?", uid).Delete(&models.Review{}).Error
}
