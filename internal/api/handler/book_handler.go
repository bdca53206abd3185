package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/citylibrary/library-service/internal/core/ports"
)

// BookHandler handles HTTP requests for catalog operations.
type BookHandler struct {
	service ports.CatalogService
}

func NewBookHandler(service ports.CatalogService) *BookHandler {
	return &BookHandler{service: service}
}

// List handles GET /v1/books. Open to anonymous callers.
//
// @Summary      List books
// @Tags         books
// @Produce      json
// @Param        search  query     string  false  "Partial match on title or author"
// @Param        genre   query     string  false  "Exact genre"
// @Param        year    query     int     false  "Exact publication year"
// @Success      200     {array}   domain.Book
// @Router       /v1/books [get]
func (h *BookHandler) List(c echo.Context) error {
	filter := ports.ListBooksFilter{
		Search: c.QueryParam("search"),
		Genre:  c.QueryParam("genre"),
	}
	if y := c.QueryParam("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "year must be an integer")
		}
		filter.Year = year
	}

	books, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

// Get handles GET /v1/books/:id.
//
// @Summary      Get a book by id
// @Tags         books
// @Produce      json
// @Param        id   path      int  true  "Book id"
// @Success      200  {object}  domain.Book
// @Failure      404  {object}  errorResponse
// @Router       /v1/books/{id} [get]
func (h *BookHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	book, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

// Create handles POST /v1/books. Admin only.
//
// @Summary      Add a book to the catalog
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBookRequest  true  "Book details"
// @Success      201   {object}  domain.Book
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/books [post]
func (h *BookHandler) Create(c echo.Context) error {
	var req createBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book, err := h.service.Create(c.Request().Context(), ports.CreateBookInput{
		Title:           req.Title,
		Author:          req.Author,
		PublicationYear: req.PublicationYear,
		Genre:           req.Genre,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, book)
}

// BulkCreate handles POST /v1/books/bulk. Admin only. Each item commits or
// fails on its own; the response summarises both.
//
// @Summary      Add several books at once
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []bulkCreateBookItem  true  "Array of books"
// @Success      200   {object}  ports.BulkCreateResult
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/books/bulk [post]
func (h *BookHandler) BulkCreate(c echo.Context) error {
	var reqs []bulkCreateBookItem
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	inputs := make([]ports.CreateBookInput, 0, len(reqs))
	for _, req := range reqs {
		inputs = append(inputs, ports.CreateBookInput{
			Title:           req.Title,
			Author:          req.Author,
			PublicationYear: req.PublicationYear,
			Genre:           req.Genre,
		})
	}

	result, err := h.service.BulkCreate(c.Request().Context(), inputs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Update handles PATCH /v1/books/:id. Admin only; only supplied fields change.
//
// @Summary      Update a book
// @Tags         books
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Book id"
// @Param        body  body      updateBookRequest  true  "Fields to change"
// @Success      200   {object}  domain.Book
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/books/{id} [patch]
func (h *BookHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateBookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book, err := h.service.Update(c.Request().Context(), id, ports.BookUpdate{
		Title:           req.Title,
		Author:          req.Author,
		PublicationYear: req.PublicationYear,
		Genre:           req.Genre,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

// Delete handles DELETE /v1/books/:id. Admin only.
//
// @Summary      Remove a book from the catalog
// @Tags         books
// @Security     BearerAuth
// @Param        id  path  int  true  "Book id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/books/{id} [delete]
func (h *BookHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
