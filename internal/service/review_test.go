package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bookly/bookly/internal/httperr"
	"github.com/bookly/bookly/internal/models"
	"github.com/bookly/bookly/internal/repo"
)

func newTestReviewService(t *testing.T) (*ReviewService, *gorm.DB) {
	t.Helper()
	db := initTestDB(t)
	return &ReviewService{
		Reviews: &repo.ReviewRepo{DB: db},
		Books:   &repo.BookRepo{DB: db},
	}, db
}

func seedBook(t *testing.T, db *gorm.DB) *models.Book {
	t.Helper()
	book := &models.Book{Title: "The Go Programming Language", Author: "Donovan", Language: "en"}
	require.NoError(t, db.Create(book).Error)
	return book
}

func seedReviewer(t *testing.T, db *gorm.DB, email, role string) *models.User {
	t.Helper()
	user := &models.User{Username: email, Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestReviewService_AddAndList(t *testing.T) {
	t.Parallel()

	svc, db := newTestReviewService(t)
	ctx := context.Background()

	book := seedBook(t, db)
	user := seedReviewer(t, db, "reader@x.com", models.RoleUser)

	review, err := svc.Add(ctx, book.UID, user, ReviewInput{ReviewText: "solid", Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, book.UID, review.BookUID)
	assert.Equal(t, user.UID, review.UserUID)

	reviews, err := svc.ForBook(ctx, book.UID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 4, reviews[0].Rating)
}

func TestReviewService_Add_UnknownBook(t *testing.T) {
	t.Parallel()

	svc, db := newTestReviewService(t)
	user := seedReviewer(t, db, "reader@x.com", models.RoleUser)

	_, err := svc.Add(context.Background(), uuid.New(), user, ReviewInput{ReviewText: "x", Rating: 1})
	assert.ErrorIs(t, err, httperr.ErrBookNotFound)
}

func TestReviewService_Delete_Ownership(t *testing.T) {
	t.Parallel()

	svc, db := newTestReviewService(t)
	ctx := context.Background()

	book := seedBook(t, db)
	author := seedReviewer(t, db, "author@x.com", models.RoleUser)
	stranger := seedReviewer(t, db, "stranger@x.com", models.RoleUser)
	admin := seedReviewer(t, db, "admin@x.com", models.RoleAdmin)

	review, err := svc.Add(ctx, book.UID, author, ReviewInput{ReviewText: "mine", Rating: 5})
	require.NoError(t, err)

	err = svc.Delete(ctx, review.UID, stranger)
	assert.ErrorIs(t, err, httperr.ErrInsufficientPermission)

	require.NoError(t, svc.Delete(ctx, review.UID, author))

	// Admin may delete someone else's review.
	review, err = svc.Add(ctx, book.UID, author, ReviewInput{ReviewText: "again", Rating: 3})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, review.UID, admin))

	err = svc.Delete(ctx, review.UID, admin)
	assert.ErrorIs(t, err, httperr.ErrReviewNotFound)
}
