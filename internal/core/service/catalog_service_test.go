package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/citylibrary/library-service/internal/core/domain"
	"github.com/citylibrary/library-service/internal/core/ports"
)

type memBookRepo struct {
	mu        sync.Mutex
	nextID    int64
	books     map[int64]*domain.Book
	listCalls int
}

func newMemBookRepo() *memBookRepo {
	return &memBookRepo{books: make(map[int64]*domain.Book)}
}

func (r *memBookRepo) Insert(_ context.Context, book *domain.Book) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	created := *book
	created.ID = r.nextID
	r.books[created.ID] = &created
	clone := created
	return &clone, nil
}

func (r *memBookRepo) FindByID(_ context.Context, id int64) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *memBookRepo) List(_ context.Context, filter ports.ListBooksFilter) ([]*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++

	out := []*domain.Book{}
	for _, b := range r.books {
		if filter.Genre != "" && b.Genre != filter.Genre {
			continue
		}
		if filter.Year > 0 && b.PublicationYear != filter.Year {
			continue
		}
		clone := *b
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memBookRepo) Update(_ context.Context, id int64, patch ports.BookUpdate) (*domain.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Author != nil {
		b.Author = *patch.Author
	}
	if patch.PublicationYear != nil {
		b.PublicationYear = *patch.PublicationYear
	}
	if patch.Genre != nil {
		b.Genre = *patch.Genre
	}
	clone := *b
	return &clone, nil
}

func (r *memBookRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return domain.ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

// memCache is an in-process stand-in for the redis catalog cache.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[key]
	return payload, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = payload
	return nil
}

func (c *memCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	return nil
}

func newCatalog(repo *memBookRepo, cache ListCache) ports.CatalogService {
	return NewCatalogService(repo, cache, nopAudit{}, zerolog.Nop())
}

func TestCatalogService_Create_RejectsBadYear(t *testing.T) {
	svc := newCatalog(newMemBookRepo(), newMemCache())

	_, err := svc.Create(context.Background(), ports.CreateBookInput{
		Title: "1984", Author: "George Orwell", PublicationYear: 0,
	})
	if !errors.Is(err, domain.ErrInvalidBook) {
		t.Fatalf("expected ErrInvalidBook, got %v", err)
	}
}

// A failing item must not abort the batch: items 1 and 3 commit, item 2 lands
// in the error list.
func TestCatalogService_BulkCreate_PartialFailure(t *testing.T) {
	repo := newMemBookRepo()
	svc := newCatalog(repo, newMemCache())

	result, err := svc.BulkCreate(context.Background(), []ports.CreateBookInput{
		{Title: "Dune", Author: "Frank Herbert", PublicationYear: 1965},
		{Title: "Broken", Author: "Nobody", PublicationYear: 0},
		{Title: "Neuromancer", Author: "William Gibson", PublicationYear: 1984},
	})
	if err != nil {
		t.Fatalf("BulkCreate returned error: %v", err)
	}

	if result.Total != 3 || result.Succeeded != 2 {
		t.Fatalf("unexpected summary: %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Index != 1 || result.Errors[0].Title != "Broken" {
		t.Fatalf("unexpected error list: %+v", result.Errors)
	}

	books, err := svc.List(context.Background(), ports.ListBooksFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 persisted books, got %d", len(books))
	}
}

func TestCatalogService_List_ServedFromCache(t *testing.T) {
	repo := newMemBookRepo()
	svc := newCatalog(repo, newMemCache())

	if _, err := svc.Create(context.Background(), ports.CreateBookInput{
		Title: "Dune", Author: "Frank Herbert", PublicationYear: 1965, Genre: "SF",
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	filter := ports.ListBooksFilter{Genre: "SF"}
	if _, err := svc.List(context.Background(), filter); err != nil {
		t.Fatalf("first list failed: %v", err)
	}
	if _, err := svc.List(context.Background(), filter); err != nil {
		t.Fatalf("second list failed: %v", err)
	}

	if repo.listCalls != 1 {
		t.Fatalf("expected 1 store query, got %d", repo.listCalls)
	}
}

func TestCatalogService_Mutation_InvalidatesCache(t *testing.T) {
	repo := newMemBookRepo()
	svc := newCatalog(repo, newMemCache())

	created, err := svc.Create(context.Background(), ports.CreateBookInput{
		Title: "Dune", Author: "Frank Herbert", PublicationYear: 1965,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.List(context.Background(), ports.ListBooksFilter{}); err != nil {
		t.Fatalf("list failed: %v", err)
	}

	year := 1966
	if _, err := svc.Update(context.Background(), created.ID, ports.BookUpdate{PublicationYear: &year}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	books, err := svc.List(context.Background(), ports.ListBooksFilter{})
	if err != nil {
		t.Fatalf("list after update failed: %v", err)
	}
	if len(books) != 1 || books[0].PublicationYear != 1966 {
		t.Fatalf("stale list after update: %+v", books[0])
	}
}

func TestCatalogService_Update_PartialAndValidation(t *testing.T) {
	repo := newMemBookRepo()
	svc := newCatalog(repo, newMemCache())

	created, err := svc.Create(context.Background(), ports.CreateBookInput{
		Title: "Dune", Author: "Frank Herbert", PublicationYear: 1965, Genre: "SF",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	title := "Dune Messiah"
	updated, err := svc.Update(context.Background(), created.ID, ports.BookUpdate{Title: &title})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	// Omitted fields stay unchanged.
	if updated.Title != "Dune Messiah" || updated.Author != "Frank Herbert" || updated.Genre != "SF" {
		t.Fatalf("partial update clobbered fields: %+v", updated)
	}

	badYear := 0
	if _, err := svc.Update(context.Background(), created.ID, ports.BookUpdate{PublicationYear: &badYear}); !errors.Is(err, domain.ErrInvalidBook) {
		t.Fatalf("expected ErrInvalidBook, got %v", err)
	}

	if _, err := svc.Update(context.Background(), 999, ports.BookUpdate{Title: &title}); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestCatalogService_Delete_NotFound(t *testing.T) {
	svc := newCatalog(newMemBookRepo(), newMemCache())

	if err := svc.Delete(context.Background(), 42); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}
