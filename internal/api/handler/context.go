package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// principal is the authenticated identity resolved by the Auth middleware for
// the duration of one request.
type principal struct {
	UserID   int64
	Username string
	Role     string
}

// ctxPrincipal extracts the principal injected by the Auth middleware and
// fast-fails before any service call when the claims are missing — presence
// of a role proves the middleware ran.
func ctxPrincipal(c echo.Context) (principal, error) {
	role, _ := c.Get("role").(string)
	if role == "" {
		return principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	userID, _ := c.Get("user_id").(int64)
	username, _ := c.Get("username").(string)
	return principal{UserID: userID, Username: username, Role: role}, nil
}
