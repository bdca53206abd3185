// Package postgres implements the relational repositories over database/sql
// with the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// uniqueViolation is the postgres error code raised when an insert hits a
// unique constraint.
const uniqueViolation = "23505"

// Open connects to postgres, verifies connectivity with a ping, and applies
// pool defaults.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables and constraints the repositories rely on.
// The partial unique index on borrowed_books is the database-level backstop
// for the single-active-borrow invariant.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`create table if not exists users (
			id bigserial primary key,
			username varchar(50) not null unique,
			password_hash text not null,
			role varchar(20) not null default 'user',
			created_at timestamptz not null default now()
		)`,
		`create table if not exists books (
			id bigserial primary key,
			title varchar(255) not null,
			author varchar(255) not null,
			publication_year int not null check (publication_year > 0),
			genre varchar(100)
		)`,
		`create table if not exists borrowed_books (
			id bigserial primary key,
			book_id bigint not null references books(id),
			user_id bigint not null references users(id),
			due_date date not null,
			returned boolean not null default false
		)`,
		`create unique index if not exists borrowed_books_active_uq
			on borrowed_books (book_id) where not returned`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a postgres unique-constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
