package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookly/bookly/internal/models"
)

type BookRepo struct {
	DB *gorm.DB
}

func (r *BookRepo) All(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&books).Error
	return books, err
}

func (r *BookRepo) ByUID(ctx context.Context, uid uuid.UUID) (*models.Book, error) {
	var book models.Book
	err := r.DB.WithContext(ctx).Where("uid = ?", uid).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *BookRepo) Create(ctx context.Context, book *models.Book) error {
	return r.DB.WithContext(ctx).Create(book).Error
}

func (r *BookRepo) Update(ctx context.Context, uid uuid.UUID, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).
		Model(&models.Book{}).
		Where("uid = ?", uid).
		Updates(fields).Error
}

func (r *BookRepo) Delete(ctx context.Context, uid uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("uid = ?", uid).Delete(&models.Book{}).Error
}
