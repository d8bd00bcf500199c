package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pracare/backend/internal/domain"
)

const userContextKey = "user"

// Authenticate resolves the Authorization bearer token to a user and
// stashes it in the request context. Identity provisioning itself (signup,
// login, token issuance) lives outside this service.
func (h *Handler) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or malformed authorization header"})
		}

		user, err := h.users.GetUserByToken(c.Request().Context(), token)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to resolve user"})
		}
		if user == nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

// currentUser returns the authenticated user set by Authenticate.
func currentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userContextKey).(*domain.User)
	return user
}
