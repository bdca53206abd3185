package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/citylibrary/library-service/internal/api/metrics"
	"github.com/citylibrary/library-service/internal/core/domain"
	"github.com/citylibrary/library-service/internal/core/ports"
)

type borrowService struct {
	repo  ports.BorrowRepository
	audit ports.AuditRecorder
	log   zerolog.Logger
}

// NewBorrowService returns a BorrowService implementation.
func NewBorrowService(repo ports.BorrowRepository, audit ports.AuditRecorder, log zerolog.Logger) ports.BorrowService {
	return &borrowService{repo: repo, audit: audit, log: log}
}

// Borrow lends the book to the user until now + the borrow period. The
// repository runs the existence check, active-record check, and insert under
// a single serialized scope, so concurrent attempts for one book cannot both
// succeed.
func (s *borrowService) Borrow(ctx context.Context, bookID, userID int64) (*domain.BorrowRecord, error) {
	due := time.Now().UTC().Add(domain.BorrowPeriod)

	record, err := s.repo.Borrow(ctx, bookID, userID, due)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookBorrowed):
			metrics.BorrowsTotal.WithLabelValues("conflict").Inc()
		case errors.Is(err, domain.ErrBookNotFound):
			metrics.BorrowsTotal.WithLabelValues("not_found").Inc()
		default:
			metrics.BorrowsTotal.WithLabelValues("error").Inc()
		}
		return nil, fmt.Errorf("borrow book %d: %w", bookID, err)
	}

	metrics.BorrowsTotal.WithLabelValues("ok").Inc()
	s.audit.Record(userID, "borrow", fmt.Sprintf("book_id=%d due=%s", bookID, due.Format(time.DateOnly)))
	s.log.Info().Int64("book_id", bookID).Int64("user_id", userID).Time("due", due).Msg("book borrowed")
	return record, nil
}

// Return closes the caller's active borrow for the book. The due date is
// retained on the returned record for history.
func (s *borrowService) Return(ctx context.Context, bookID, userID int64) error {
	if err := s.repo.Return(ctx, bookID, userID); err != nil {
		if errors.Is(err, domain.ErrBorrowNotFound) {
			metrics.ReturnsTotal.WithLabelValues("not_found").Inc()
		} else {
			metrics.ReturnsTotal.WithLabelValues("error").Inc()
		}
		return fmt.Errorf("return book %d: %w", bookID, err)
	}

	metrics.ReturnsTotal.WithLabelValues("ok").Inc()
	s.audit.Record(userID, "return", fmt.Sprintf("book_id=%d", bookID))
	s.log.Info().Int64("book_id", bookID).Int64("user_id", userID).Msg("book returned")
	return nil
}

func (s *borrowService) History(ctx context.Context, userID int64) ([]*domain.BorrowRecord, error) {
	return s.repo.ListByUser(ctx, userID)
}
