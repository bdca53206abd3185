package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/citylibrary/library-service/internal/core/ports"
)

// BorrowHandler handles the borrow/return workflow.
type BorrowHandler struct {
	service ports.BorrowService
}

func NewBorrowHandler(service ports.BorrowService) *BorrowHandler {
	return &BorrowHandler{service: service}
}

// Borrow handles POST /v1/books/:id/borrow.
//
// @Summary      Borrow a book
// @Tags         borrows
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Book id"
// @Success      201  {object}  domain.BorrowRecord
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/books/{id}/borrow [post]
func (h *BorrowHandler) Borrow(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	bookID, err := pathID(c)
	if err != nil {
		return err
	}

	record, err := h.service.Borrow(c.Request().Context(), bookID, p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, record)
}

// Return handles POST /v1/books/:id/return. A user may only return their own
// borrow.
//
// @Summary      Return a borrowed book
// @Tags         borrows
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Book id"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/books/{id}/return [post]
func (h *BorrowHandler) Return(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	bookID, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.service.Return(c.Request().Context(), bookID, p.UserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "returned"})
}

// History handles GET /v1/borrows — the caller's own borrow history.
//
// @Summary      List the caller's borrow records
// @Tags         borrows
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.BorrowRecord
// @Failure      401  {object}  errorResponse
// @Router       /v1/borrows [get]
func (h *BorrowHandler) History(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	records, err := h.service.History(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}
