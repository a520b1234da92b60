package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookly/bookly/internal/httperr"
	"github.com/bookly/bookly/internal/models"
	"github.com/bookly/bookly/internal/repo"
)

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[string]models.Book
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: make(map[string]models.Book)}
}

func (f *fakeIndex) IndexBook(ctx context.Context, book *models.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[book.UID.String()] = *book
	return nil
}

func (f *fakeIndex) RemoveBook(ctx context.Context, uid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, uid)
	return nil
}

func (f *fakeIndex) SearchBooks(ctx context.Context, query string, from, size int) ([]models.Book, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Book
	for _, b := range f.indexed {
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

func newTestBookService(t *testing.T) (*BookService, *fakeIndex) {
	t.Helper()
	index := newFakeIndex()
	return &BookService{
		Books: &repo.BookRepo{DB: initTestDB(t)},
		Index: index,
	}, index
}

func TestBookService_CRUD(t *testing.T) {
	t.Parallel()

	svc, index := newTestBookService(t)
	ctx := context.Background()
	owner := uuid.New()

	book, err := svc.Create(ctx, BookInput{
		Title:         "The Go Programming Language",
		Author:        "Donovan",
		Publisher:     "Addison-Wesley",
		PublishedDate: "2015-10-26",
		PageCount:     380,
		Language:      "en",
	}, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, book.UserUID)
	assert.Contains(t, index.indexed, book.UID.String())

	got, err := svc.Get(ctx, book.UID)
	require.NoError(t, err)
	assert.Equal(t, "The Go Programming Language", got.Title)

	updated, err := svc.Update(ctx, book.UID, BookInput{
		Title:     "The Go Programming Language, 2nd",
		Author:    "Donovan",
		PageCount: 400,
		Language:  "en",
	})
	require.NoError(t, err)
	assert.Equal(t, "The Go Programming Language, 2nd", updated.Title)
	assert.Equal(t, 400, updated.PageCount)
	// Untouched date survives a patch with an empty published_date.
	assert.Equal(t, "2015-10-26", updated.PublishedDate)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.Delete(ctx, book.UID))
	assert.NotContains(t, index.indexed, book.UID.String())

	_, err = svc.Get(ctx, book.UID)
	assert.ErrorIs(t, err, httperr.ErrBookNotFound)
	err = svc.Delete(ctx, book.UID)
	assert.ErrorIs(t, err, httperr.ErrBookNotFound)
}
