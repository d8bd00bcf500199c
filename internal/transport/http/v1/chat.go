package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pracare/backend/internal/domain"
)

// ListSessions retrieves the caller's sessions, newest activity first.
// GET /api/chat/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	user := currentUser(c)
	ctx := c.Request().Context()

	sessions, err := h.service.ListSessions(ctx, user)
	if err != nil {
		return jsonError(c, err)
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": sessions,
	})
}

// CreateSession creates an empty session for the caller.
// POST /api/chat/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	user := currentUser(c)
	ctx := c.Request().Context()

	session, err := h.service.CreateSession(ctx, user)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusCreated, session)
}

// GetSession retrieves one session with its messages.
// GET /api/chat/sessions/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	user := currentUser(c)
	sessionID := c.Param("session_id")
	ctx := c.Request().Context()

	session, err := h.service.GetSession(ctx, user, sessionID)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, session)
}

// SendMessage runs one chat turn.
// POST /api/chat/send
func (h *Handler) SendMessage(c echo.Context) error {
	user := currentUser(c)

	var req domain.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	resp, err := h.service.SendMessage(ctx, user, &req)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}
