package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/citylibrary/library-service/internal/api/metrics"
	"github.com/citylibrary/library-service/internal/core/domain"
	"github.com/citylibrary/library-service/internal/core/ports"
)

// ListCache abstracts the catalog list cache (Redis). All methods are
// best-effort: a cache failure never fails the catalog operation.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte) error
	Invalidate(ctx context.Context) error
}

type catalogService struct {
	repo  ports.BookRepository
	cache ListCache
	audit ports.AuditRecorder
	log   zerolog.Logger
}

// NewCatalogService returns a CatalogService implementation.
func NewCatalogService(repo ports.BookRepository, cache ListCache, audit ports.AuditRecorder, log zerolog.Logger) ports.CatalogService {
	return &catalogService{repo: repo, cache: cache, audit: audit, log: log}
}

func (s *catalogService) Create(ctx context.Context, input ports.CreateBookInput) (*domain.Book, error) {
	book := &domain.Book{
		Title:           input.Title,
		Author:          input.Author,
		PublicationYear: input.PublicationYear,
		Genre:           input.Genre,
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Insert(ctx, book)
	if err != nil {
		return nil, err
	}

	metrics.BooksCreatedTotal.Inc()
	s.invalidateCache(ctx)
	s.log.Info().Int64("book_id", created.ID).Str("title", created.Title).Msg("book created")
	return created, nil
}

// BulkCreate inserts each book in its own transaction. A failing item is
// recorded in the per-item error list and does not abort the rest.
func (s *catalogService) BulkCreate(ctx context.Context, inputs []ports.CreateBookInput) (*ports.BulkCreateResult, error) {
	result := &ports.BulkCreateResult{Total: len(inputs)}

	for i, input := range inputs {
		book := &domain.Book{
			Title:           input.Title,
			Author:          input.Author,
			PublicationYear: input.PublicationYear,
			Genre:           input.Genre,
		}

		err := book.Validate()
		if err == nil {
			_, err = s.repo.Insert(ctx, book)
		}
		if err != nil {
			result.Errors = append(result.Errors, ports.BulkCreateError{
				Index: i,
				Title: input.Title,
				Error: err.Error(),
			})
			continue
		}

		result.Succeeded++
		metrics.BooksCreatedTotal.Inc()
	}

	if result.Succeeded > 0 {
		s.invalidateCache(ctx)
	}
	s.log.Info().Int("total", result.Total).Int("succeeded", result.Succeeded).Msg("bulk create finished")
	return result, nil
}

func (s *catalogService) Get(ctx context.Context, id int64) (*domain.Book, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *catalogService) List(ctx context.Context, filter ports.ListBooksFilter) ([]*domain.Book, error) {
	key := cacheKey(filter)

	if payload, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache read failed, querying store")
	} else if ok {
		var books []*domain.Book
		if err := json.Unmarshal(payload, &books); err == nil {
			metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
			return books, nil
		}
	}
	metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()

	books, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(books); err == nil {
		if err := s.cache.Set(ctx, key, payload); err != nil {
			s.log.Warn().Err(err).Msg("catalog cache write failed")
		}
	}
	return books, nil
}

func (s *catalogService) Update(ctx context.Context, id int64, patch ports.BookUpdate) (*domain.Book, error) {
	if patch.PublicationYear != nil && *patch.PublicationYear <= 0 {
		return nil, domain.ErrInvalidBook
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	s.log.Info().Int64("book_id", id).Msg("book updated")
	return updated, nil
}

func (s *catalogService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateCache(ctx)
	s.log.Info().Int64("book_id", id).Msg("book deleted")
	return nil
}

func (s *catalogService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

// cacheKey maps a list filter deterministically to a cache key.
func cacheKey(filter ports.ListBooksFilter) string {
	return fmt.Sprintf("books:%s:%s:%d", filter.Search, filter.Genre, filter.Year)
}
