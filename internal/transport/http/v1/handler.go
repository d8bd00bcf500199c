// Package v1 provides the HTTP handlers for the backend API.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pracare/backend/internal/adapter/ai"
	store "github.com/pracare/backend/internal/repository"
	"github.com/pracare/backend/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	users   store.Store
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service, users store.Store) *Handler {
	return &Handler{
		service: service,
		users:   users,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	api := e.Group("/api", h.Authenticate)

	// Chat API
	api.GET("/chat/sessions", h.ListSessions)
	api.POST("/chat/sessions", h.CreateSession)
	api.GET("/chat/sessions/:session_id", h.GetSession)
	api.POST("/chat/send", h.SendMessage)

	// Reports API
	api.POST("/reports/generate/:session_id", h.GenerateReport)
	api.GET("/reports", h.ListReports)
	api.PATCH("/reports/:report_id/review", h.ReviewReport)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// jsonError maps service errors to HTTP responses.
func jsonError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidMessage),
		errors.Is(err, service.ErrInvalidFollowUpDate),
		errors.Is(err, service.ErrEmptySession),
		errors.Is(err, ai.ErrNoUserMessages):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrReportNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrReviewForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrAnalysisFailed):
		status = http.StatusBadGateway
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
