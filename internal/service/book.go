package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookly/bookly/internal/httperr"
	"github.com/bookly/bookly/internal/logging"
	"github.com/bookly/bookly/internal/models"
	"github.com/bookly/bookly/internal/repo"
)

// BookIndexer mirrors catalog writes into the search index.
type BookIndexer interface {
	IndexBook(ctx context.Context, book *models.Book) error
	RemoveBook(ctx context.Context, uid string) error
	SearchBooks(ctx context.Context, query string, from, size int) ([]models.Book, int64, error)
}

type BookService struct {
	Books *repo.BookRepo
	Index BookIndexer
}

type BookInput struct {
	Title         string
	Author        string
	Publisher     string
	PublishedDate string
	PageCount     int
	Language      string
}

func (s *BookService) List(ctx context.Context) ([]models.Book, error) {
	return s.Books.All(ctx)
}

func (s *BookService) Get(ctx context.Context, uid uuid.UUID) (*models.Book, error) {
	book, err := s.Books.ByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, httperr.ErrBookNotFound
	}
	return book, nil
}

func (s *BookService) Create(ctx context.Context, in BookInput, ownerUID uuid.UUID) (*models.Book, error) {
	book := &models.Book{
		Title:         in.Title,
		Author:        in.Author,
		Publisher:     in.Publisher,
		PublishedDate: in.PublishedDate,
		PageCount:     in.PageCount,
		Language:      in.Language,
		UserUID:       ownerUID,
	}
	if err := s.Books.Create(ctx, book); err != nil {
		return nil, err
	}
	s.index(ctx, book)
	return book, nil
}

func (s *BookService) Update(ctx context.Context, uid uuid.UUID, in BookInput) (*models.Book, error) {
	book, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"title":      in.Title,
		"author":     in.Author,
		"publisher":  in.Publisher,
		"page_count": in.PageCount,
		"language":   in.Language,
	}
	if in.PublishedDate != "" {
		fields["published_date"] = in.PublishedDate
	}
	if err := s.Books.Update(ctx, uid, fields); err != nil {
		return nil, err
	}

	book, err = s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.index(ctx, book)
	return book, nil
}

func (s *BookService) Delete(ctx context.Context, uid uuid.UUID) error {
	book, err := s.Books.ByUID(ctx, uid)
	if err != nil {
		return err
	}
	if book == nil {
		return httperr.ErrBookNotFound
	}
	if err := s.Books.Delete(ctx, uid); err != nil {
		return err
	}

	if s.Index != nil {
		if err := s.Index.RemoveBook(ctx, uid.String()); err != nil {
			logging.FromContext(ctx).Error("search deindex failed", "uid", uid, "error", err)
		}
	}
	return nil
}

func (s *BookService) Search(ctx context.Context, query string, from, size int) ([]models.Book, int64, error) {
	if s.Index == nil {
		return nil, 0, nil
	}
	return s.Index.SearchBooks(ctx, query, from, size)
}

func (s *BookService) index(ctx context.Context, book *models.Book) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexBook(ctx, book); err != nil {
		logging.FromContext(ctx).Error("search index failed", "uid", book.UID, "error", err)
	}
}
