package domain

import "errors"

var (
	ErrBookNotFound = errors.New("book not found")
	ErrInvalidBook  = errors.New("invalid book data")
)

// Book is a catalog record. Only admins create, update, or delete books.
type Book struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	PublicationYear int    `json:"publication_year"`
	Genre           string `json:"genre,omitempty"`
}

// Validate checks the schema constraints that hold for every stored book.
func (b *Book) Validate() error {
	if b.Title == "" || b.Author == "" {
		return ErrInvalidBook
	}
	if b.PublicationYear <= 0 {
		return ErrInvalidBook
	}
	return nil
}
