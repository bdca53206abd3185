package ports

import (
	"context"
	"time"

	"github.com/citylibrary/library-service/internal/core/domain"
)

// BorrowRepository owns borrow records and is the sole writer enforcing the
// single-active-borrow invariant per book.
type BorrowRepository interface {
	// Borrow performs the check-and-insert under isolation strong enough
	// that two concurrent calls for the same book cannot both succeed:
	// exactly one observes domain.ErrBookBorrowed. A missing book yields
	// domain.ErrBookNotFound.
	Borrow(ctx context.Context, bookID, userID int64, due time.Time) (*domain.BorrowRecord, error)
	// Return flips returned=true on the caller's own active record for the
	// book. domain.ErrBorrowNotFound when no such record exists — an
	// already-returned copy is indistinguishable from one never borrowed.
	Return(ctx context.Context, bookID, userID int64) error
	ListByUser(ctx context.Context, userID int64) ([]*domain.BorrowRecord, error)
}
