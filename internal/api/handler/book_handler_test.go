package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/citylibrary/library-service/internal/core/domain"
	"github.com/citylibrary/library-service/internal/core/ports"
)

type stubCatalogService struct {
	createFn     func(ctx context.Context, input ports.CreateBookInput) (*domain.Book, error)
	bulkCreateFn func(ctx context.Context, inputs []ports.CreateBookInput) (*ports.BulkCreateResult, error)
	getFn        func(ctx context.Context, id int64) (*domain.Book, error)
	listFn       func(ctx context.Context, filter ports.ListBooksFilter) ([]*domain.Book, error)
	updateFn     func(ctx context.Context, id int64, patch ports.BookUpdate) (*domain.Book, error)
	deleteFn     func(ctx context.Context, id int64) error
}

func (s *stubCatalogService) Create(ctx context.Context, input ports.CreateBookInput) (*domain.Book, error) {
	return s.createFn(ctx, input)
}

func (s *stubCatalogService) BulkCreate(ctx context.Context, inputs []ports.CreateBookInput) (*ports.BulkCreateResult, error) {
	return s.bulkCreateFn(ctx, inputs)
}

func (s *stubCatalogService) Get(ctx context.Context, id int64) (*domain.Book, error) {
	return s.getFn(ctx, id)
}

func (s *stubCatalogService) List(ctx context.Context, filter ports.ListBooksFilter) ([]*domain.Book, error) {
	return s.listFn(ctx, filter)
}

func (s *stubCatalogService) Update(ctx context.Context, id int64, patch ports.BookUpdate) (*domain.Book, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *stubCatalogService) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func TestBookHandler_List_ParsesFilter(t *testing.T) {
	var got ports.ListBooksFilter
	svc := &stubCatalogService{
		listFn: func(_ context.Context, filter ports.ListBooksFilter) ([]*domain.Book, error) {
			got = filter
			return []*domain.Book{{ID: 1, Title: "Dune"}}, nil
		},
	}
	h := NewBookHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/books?search=dune&genre=SF&year=1965", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Search != "dune" || got.Genre != "SF" || got.Year != 1965 {
		t.Fatalf("filter not forwarded: %+v", got)
	}
}

func TestBookHandler_List_BadYear(t *testing.T) {
	h := NewBookHandler(&stubCatalogService{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/books?year=sixties", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assertHTTPStatus(t, h.List(c), http.StatusBadRequest)
}

func TestBookHandler_Get(t *testing.T) {
	svc := &stubCatalogService{
		getFn: func(_ context.Context, id int64) (*domain.Book, error) {
			if id != 5 {
				return nil, domain.ErrBookNotFound
			}
			return &domain.Book{ID: 5, Title: "Dune"}, nil
		},
	}
	h := NewBookHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := h.Get(c); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBookHandler_Get_BadID(t *testing.T) {
	h := NewBookHandler(&stubCatalogService{})

	for _, raw := range []string{"abc", "0", "-3"} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(raw)

		assertHTTPStatus(t, h.Get(c), http.StatusBadRequest)
	}
}

func TestBookHandler_Create(t *testing.T) {
	svc := &stubCatalogService{
		createFn: func(_ context.Context, input ports.CreateBookInput) (*domain.Book, error) {
			return &domain.Book{ID: 1, Title: input.Title, Author: input.Author, PublicationYear: input.PublicationYear}, nil
		},
	}
	h := NewBookHandler(svc)

	c, rec := newJSONContext(http.MethodPost, "/v1/books", `{"title":"Dune","author":"Frank Herbert","publication_year":1965}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestBookHandler_Create_Validation(t *testing.T) {
	h := NewBookHandler(&stubCatalogService{})

	cases := []string{
		`{"author":"Frank Herbert","publication_year":1965}`,
		`{"title":"Dune","publication_year":1965}`,
		`{"title":"Dune","author":"Frank Herbert","publication_year":0}`,
	}
	for _, body := range cases {
		c, _ := newJSONContext(http.MethodPost, "/v1/books", body)
		assertHTTPStatus(t, h.Create(c), http.StatusBadRequest)
	}
}

func TestBookHandler_BulkCreate(t *testing.T) {
	svc := &stubCatalogService{
		bulkCreateFn: func(_ context.Context, inputs []ports.CreateBookInput) (*ports.BulkCreateResult, error) {
			return &ports.BulkCreateResult{
				Total:     len(inputs),
				Succeeded: len(inputs) - 1,
				Errors:    []ports.BulkCreateError{{Index: 1, Title: inputs[1].Title, Error: "invalid book"}},
			}, nil
		},
	}
	h := NewBookHandler(svc)

	body := `[{"title":"Dune","author":"Frank Herbert","publication_year":1965},` +
		`{"title":"Broken","author":"Nobody","publication_year":0}]`
	c, rec := newJSONContext(http.MethodPost, "/v1/books/bulk", body)
	if err := h.BulkCreate(c); err != nil {
		t.Fatalf("BulkCreate returned error: %v", err)
	}
	// Partial failure is still a 200: the summary carries the per-item errors.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result ports.BulkCreateResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if result.Total != 2 || result.Succeeded != 1 || len(result.Errors) != 1 {
		t.Fatalf("unexpected summary: %+v", result)
	}
}

func TestBookHandler_BulkCreate_EmptyBatch(t *testing.T) {
	h := NewBookHandler(&stubCatalogService{})

	c, _ := newJSONContext(http.MethodPost, "/v1/books/bulk", `[]`)
	assertHTTPStatus(t, h.BulkCreate(c), http.StatusBadRequest)
}

func TestBookHandler_Update_ForwardsOnlySuppliedFields(t *testing.T) {
	var got ports.BookUpdate
	svc := &stubCatalogService{
		updateFn: func(_ context.Context, _ int64, patch ports.BookUpdate) (*domain.Book, error) {
			got = patch
			return &domain.Book{ID: 5, Title: *patch.Title}, nil
		},
	}
	h := NewBookHandler(svc)

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"title":"Dune Messiah"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := h.Update(c); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if got.Title == nil || *got.Title != "Dune Messiah" {
		t.Fatalf("title not forwarded: %+v", got)
	}
	if got.Author != nil || got.PublicationYear != nil || got.Genre != nil {
		t.Fatalf("absent fields must stay nil: %+v", got)
	}
}

func TestBookHandler_Delete(t *testing.T) {
	svc := &stubCatalogService{
		deleteFn: func(_ context.Context, id int64) error {
			if id != 5 {
				return domain.ErrBookNotFound
			}
			return nil
		},
	}
	h := NewBookHandler(svc)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c2 := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c2.SetParamNames("id")
	c2.SetParamValues("6")
	if err := h.Delete(c2); !errors.Is(err, domain.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}
