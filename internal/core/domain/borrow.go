package domain

import (
	"errors"
	"time"
)

var (
	ErrBookBorrowed   = errors.New("book is already borrowed")
	ErrBorrowNotFound = errors.New("no active borrow found")
)

// BorrowPeriod is how long a borrowed copy may be kept.
const BorrowPeriod = 14 * 24 * time.Hour

// BorrowRecord tracks custody of one physical book copy.
//
// Invariant: at most one record with Returned=false exists per BookID at any
// time. The postgres repository enforces this with a row lock and a partial
// unique index; records are never deleted so returned rows form the history.
type BorrowRecord struct {
	ID       int64     `json:"id"`
	BookID   int64     `json:"book_id"`
	UserID   int64     `json:"user_id"`
	DueDate  time.Time `json:"due_date"`
	Returned bool      `json:"returned"`
}
