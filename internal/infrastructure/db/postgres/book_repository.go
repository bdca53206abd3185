package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/citylibrary/library-service/internal/core/domain"
	"github.com/citylibrary/library-service/internal/core/ports"
)

// BookRepository implements ports.BookRepository over postgres.
type BookRepository struct {
	db *sql.DB
}

func NewBookRepository(db *sql.DB) *BookRepository {
	return &BookRepository{db: db}
}

func (r *BookRepository) Insert(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	created := *book
	err := r.db.QueryRowContext(ctx, `
		insert into books (title, author, publication_year, genre)
		values ($1, $2, $3, nullif($4, ''))
		returning id
	`, book.Title, book.Author, book.PublicationYear, book.Genre).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	return &created, nil
}

func (r *BookRepository) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	var b domain.Book
	var genre sql.NullString
	err := r.db.QueryRowContext(ctx, `
		select id, title, author, publication_year, genre
		from books where id = $1
	`, id).Scan(&b.ID, &b.Title, &b.Author, &b.PublicationYear, &genre)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find book: %w", err)
	}
	b.Genre = genre.String
	return &b, nil
}

func (r *BookRepository) List(ctx context.Context, filter ports.ListBooksFilter) ([]*domain.Book, error) {
	query := `select id, title, author, publication_year, genre from books`
	var conds []string
	var args []any

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := "$" + strconv.Itoa(len(args))
		conds = append(conds, "(title ilike "+p+" or author ilike "+p+")")
	}
	if filter.Genre != "" {
		args = append(args, filter.Genre)
		conds = append(conds, "genre = $"+strconv.Itoa(len(args)))
	}
	if filter.Year > 0 {
		args = append(args, filter.Year)
		conds = append(conds, "publication_year = $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		query += " where " + strings.Join(conds, " and ")
	}
	query += " order by id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		var b domain.Book
		var genre sql.NullString
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.PublicationYear, &genre); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		b.Genre = genre.String
		books = append(books, &b)
	}
	return books, rows.Err()
}

// Update applies only the non-nil fields of patch and returns the updated
// record. Missing ids yield domain.ErrBookNotFound.
func (r *BookRepository) Update(ctx context.Context, id int64, patch ports.BookUpdate) (*domain.Book, error) {
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Author != nil {
		add("author", *patch.Author)
	}
	if patch.PublicationYear != nil {
		add("publication_year", *patch.PublicationYear)
	}
	if patch.Genre != nil {
		add("genre", *patch.Genre)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	args = append(args, id)
	query := "update books set " + strings.Join(sets, ", ") +
		" where id = $" + strconv.Itoa(len(args)) +
		" returning id, title, author, publication_year, genre"

	var b domain.Book
	var genre sql.NullString
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&b.ID, &b.Title, &b.Author, &b.PublicationYear, &genre)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	b.Genre = genre.String
	return &b, nil
}

func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `delete from books where id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}
