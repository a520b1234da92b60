package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookly/bookly/internal/httperr"
	"github.com/bookly/bookly/internal/models"
	"github.com/bookly/bookly/internal/repo"
)

type ReviewService struct {
	Reviews *repo.ReviewRepo
	Books   *repo.BookRepo
}

type ReviewInput struct {
	ReviewText string
	Rating     int
}

func (s *ReviewService) Add(ctx context.Context, bookUID uuid.UUID, user *models.User, in ReviewInput) (*models.Review, error) {
	book, err := s.Books.ByUID(ctx, bookUID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, httperr.ErrBookNotFound
	}

	review := &models.Review{
		BookUID:    book.UID,
		UserUID:    user.UID,
		ReviewText: in.ReviewText,
		Rating:     in.Rating,
	}
	if err := s.Reviews.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) ForBook(ctx context.Context, bookUID uuid.UUID) ([]models.Review, error) {
	book, err := s.Books.ByUID(ctx, bookUID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, httperr.ErrBookNotFound
	}
	return s.Reviews.ForBook(ctx, bookUID)
}

// Delete removes a review; only its author or an admin may do so.
func (s *ReviewService) Delete(ctx context.Context, uid uuid.UUID, user *models.User) error {
	review, err := s.Reviews.ByUID(ctx, uid)
	if err != nil {
		return err
	}
	if review == nil {
		return httperr.ErrReviewNotFound
	}
	if review.UserUID != user.UID && user.Role != models.RoleAdmin {
		return httperr.ErrInsufficientPermission
	}
	return s.Reviews.Delete(ctx, uid)
}
