package ports

import (
	"context"

	"github.com/citylibrary/library-service/internal/core/domain"
)

// BorrowService defines the borrow/return workflow.
type BorrowService interface {
	Borrow(ctx context.Context, bookID, userID int64) (*domain.BorrowRecord, error)
	Return(ctx context.Context, bookID, userID int64) error
	History(ctx context.Context, userID int64) ([]*domain.BorrowRecord, error)
}
