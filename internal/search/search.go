package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/bookly/bookly/internal/models"
)

func NewClient(url, username, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, err
	}

	res, err := client.Info()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch: %s: %s", res.Status(), body)
	}
	return client, nil
}

// BookIndex keeps the book catalog searchable. Writes go through the
// repository first; indexing failures are logged by callers and never
// fail the request.
type BookIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func (i *BookIndex) IndexBook(ctx context.Context, book *models.Book) error {
	doc, err := json.Marshal(book)
	if err != nil {
		return err
	}

	res, err := i.ES.Index(
		i.Index,
		bytes.NewReader(doc),
		i.ES.Index.WithDocumentID(book.UID.String()),
		i.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index book: %s", res.Status())
	}
	return nil
}

func (i *BookIndex) RemoveBook(ctx context.Context, uid string) error {
	res, err := i.ES.Delete(
		i.Index,
		uid,
		i.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	// A 404 means the document never made it to the index; fine on delete.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("remove book: %s", res.Status())
	}
	return nil
}

func (i *BookIndex) SearchBooks(ctx context.Context, query string, from, size int) ([]models.Book, int64, error) {
	if size <= 0 {
		size = 20
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^3", "author^2", "publisher", "language"},
				"fuzziness": "AUTO",
			},
		},
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Index),
		i.ES.Search.WithBody(bytes.NewReader(buf)),
		i.ES.Search.WithTrackTotalHits(true),
		i.ES.Search.WithFrom(from),
		i.ES.Search.WithSize(size),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, fmt.Errorf("search books: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Book `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, err
	}

	books := make([]models.Book, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		books = append(books, hit.Source)
	}
	return books, parsed.Hits.Total.Value, nil
}
