package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/citylibrary/library-service/internal/api/metrics"
	"github.com/citylibrary/library-service/internal/core/domain"
	"github.com/citylibrary/library-service/internal/core/ports"
	"github.com/citylibrary/library-service/internal/core/service"
)

// Auth validates the bearer token and injects the principal into context.
//
// After the signature and expiry check the user is re-resolved by id against
// the credential store, so a token issued for a since-deleted account is
// rejected even before it expires. Every authentication failure maps to the
// same 401 to avoid leaking which check tripped; a storage fault during
// re-resolution propagates as an internal error instead.
func Auth(tokens *service.TokenManager, users ports.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				metrics.AuthFailuresTotal.WithLabelValues("missing_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.AuthFailuresTotal.WithLabelValues("missing_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil {
				// Only a missing user row is an auth failure. A storage
				// fault propagates so the error handler reports it as one.
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.AuthFailuresTotal.WithLabelValues("unknown_user").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return fmt.Errorf("resolve user %d: %w", claims.UserID, err)
			}

			// Role comes from the store, not the token, so a role change
			// takes effect without waiting for token expiry.
			c.Set("user_id", user.ID)
			c.Set("username", user.Username)
			c.Set("role", user.Role)

			return next(c)
		}
	}
}
