package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/citylibrary/library-service/internal/core/domain"
)

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery("insert into users").
		WithArgs("alice", "hashed", domain.RoleUser, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	created, err := repo.Create(context.Background(), &domain.User{
		Username: "alice", PasswordHash: "hashed", Role: domain.RoleUser, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != 1 || created.Username != "alice" {
		t.Fatalf("unexpected user: %+v", created)
	}
	expectMet(t, mock)
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("insert into users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

	_, err := repo.Create(context.Background(), &domain.User{Username: "alice"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	expectMet(t, mock)
}

func TestUserRepository_FindByUsername(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery("select id, username, password_hash, role, created_at").
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}).
			AddRow(1, "alice", "hashed", domain.RoleAdmin, now))

	user, err := repo.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FindByUsername returned error: %v", err)
	}
	if user.ID != 1 || user.Role != domain.RoleAdmin || user.PasswordHash != "hashed" {
		t.Fatalf("unexpected user: %+v", user)
	}
	expectMet(t, mock)
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("select id, username, password_hash, role, created_at").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}))

	_, err := repo.FindByID(context.Background(), 99)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	expectMet(t, mock)
}
