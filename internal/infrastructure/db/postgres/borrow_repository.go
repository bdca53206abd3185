package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/citylibrary/library-service/internal/core/domain"
)

// BorrowRepository implements ports.BorrowRepository over postgres. It is the
// sole writer of borrowed_books.
type BorrowRepository struct {
	db *sql.DB
}

func NewBorrowRepository(db *sql.DB) *BorrowRepository {
	return &BorrowRepository{db: db}
}

// Borrow runs the existence check, active-record check, and insert inside one
// serializable transaction, holding a row lock on the book so two concurrent
// attempts for the same copy serialize: the second observes the first's
// record and fails with domain.ErrBookBorrowed. The partial unique index on
// (book_id) where not returned catches anything the lock path misses.
func (r *BorrowRepository) Borrow(ctx context.Context, bookID, userID int64, due time.Time) (*domain.BorrowRecord, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx, `select 1 from books where id = $1 for update`, bookID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock book: %w", err)
	}

	var active int
	err = tx.QueryRowContext(ctx, `
		select count(*) from borrowed_books where book_id = $1 and not returned
	`, bookID).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("check active borrow: %w", err)
	}
	if active > 0 {
		return nil, domain.ErrBookBorrowed
	}

	record := &domain.BorrowRecord{BookID: bookID, UserID: userID, DueDate: due}
	err = tx.QueryRowContext(ctx, `
		insert into borrowed_books (book_id, user_id, due_date, returned)
		values ($1, $2, $3, false)
		returning id
	`, bookID, userID, due).Scan(&record.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrBookBorrowed
		}
		return nil, fmt.Errorf("insert borrow: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrBookBorrowed
		}
		return nil, err
	}
	return record, nil
}

// Return closes the caller's own active record. Records are never deleted;
// the due date stays on the row for history.
func (r *BorrowRepository) Return(ctx context.Context, bookID, userID int64) error {
	res, err := r.db.ExecContext(ctx, `
		update borrowed_books set returned = true
		where book_id = $1 and user_id = $2 and not returned
	`, bookID, userID)
	if err != nil {
		return fmt.Errorf("return borrow: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrBorrowNotFound
	}
	return nil
}

func (r *BorrowRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.BorrowRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		select id, book_id, user_id, due_date, returned
		from borrowed_books where user_id = $1
		order by id desc
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list borrows: %w", err)
	}
	defer rows.Close()

	records := []*domain.BorrowRecord{}
	for rows.Next() {
		var rec domain.BorrowRecord
		if err := rows.Scan(&rec.ID, &rec.BookID, &rec.UserID, &rec.DueDate, &rec.Returned); err != nil {
			return nil, fmt.Errorf("scan borrow: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
