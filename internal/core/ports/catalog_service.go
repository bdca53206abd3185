package ports

import (
	"context"

	"github.com/citylibrary/library-service/internal/core/domain"
)

// CreateBookInput carries the fields of a new catalog record.
type CreateBookInput struct {
	Title           string
	Author          string
	PublicationYear int
	Genre           string
}

// BulkCreateError identifies one failed item of a bulk create.
type BulkCreateError struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Error string `json:"error"`
}

// BulkCreateResult summarises a partial-failure batch: each item committed or
// failed independently, so Succeeded+len(Errors) == Total.
type BulkCreateResult struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Errors    []BulkCreateError `json:"errors"`
}

// CatalogService defines use-case operations on the book catalog.
type CatalogService interface {
	Create(ctx context.Context, input CreateBookInput) (*domain.Book, error)
	// BulkCreate inserts each book independently; a failure rolls back only
	// that item. The batch as a whole is deliberately not atomic.
	BulkCreate(ctx context.Context, inputs []CreateBookInput) (*BulkCreateResult, error)
	Get(ctx context.Context, id int64) (*domain.Book, error)
	List(ctx context.Context, filter ListBooksFilter) ([]*domain.Book, error)
	Update(ctx context.Context, id int64, patch BookUpdate) (*domain.Book, error)
	Delete(ctx context.Context, id int64) error
}
