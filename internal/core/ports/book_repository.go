package ports

import (
	"context"

	"github.com/citylibrary/library-service/internal/core/domain"
)

// ListBooksFilter carries the query parameters for listing books.
type ListBooksFilter struct {
	Search string // optional: partial match on title or author
	Genre  string // optional: exact genre
	Year   int    // optional: exact publication year (0 = no filter)
}

// BookUpdate carries a partial update; nil fields are left unchanged.
type BookUpdate struct {
	Title           *string
	Author          *string
	PublicationYear *int
	Genre           *string
}

// BookRepository defines persistence for catalog records.
type BookRepository interface {
	Insert(ctx context.Context, book *domain.Book) (*domain.Book, error)
	FindByID(ctx context.Context, id int64) (*domain.Book, error)
	List(ctx context.Context, filter ListBooksFilter) ([]*domain.Book, error)
	// Update applies only the non-nil fields of patch.
	Update(ctx context.Context, id int64, patch BookUpdate) (*domain.Book, error)
	Delete(ctx context.Context, id int64) error
}
