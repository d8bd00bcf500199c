// Package http provides the HTTP server implementation for the backend.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	store "github.com/pracare/backend/internal/repository"
	"github.com/pracare/backend/internal/service"
	v1 "github.com/pracare/backend/internal/transport/http/v1"
)

// NewServer creates and configures the HTTP server. The store is needed by
// the identity middleware to resolve bearer tokens.
func NewServer(svc *service.Service, users store.Store) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	h := v1.NewHandler(svc, users)

	// Register Routes
	h.RegisterRoutes(e)

	return e
}
