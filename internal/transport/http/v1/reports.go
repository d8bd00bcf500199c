package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pracare/backend/internal/domain"
)

// GenerateReport analyzes a session into a report, idempotently.
// POST /api/reports/generate/:session_id
func (h *Handler) GenerateReport(c echo.Context) error {
	user := currentUser(c)
	sessionID := c.Param("session_id")
	ctx := c.Request().Context()

	report, err := h.service.GenerateReport(ctx, user, sessionID)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, report)
}

// ListReports retrieves reports: all for doctors, own for patients.
// GET /api/reports
func (h *Handler) ListReports(c echo.Context) error {
	user := currentUser(c)
	ctx := c.Request().Context()

	reports, err := h.service.ListReports(ctx, user)
	if err != nil {
		return jsonError(c, err)
	}
	if reports == nil {
		reports = []domain.Report{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"reports": reports,
	})
}

// ReviewReport applies a doctor's review to a report.
// PATCH /api/reports/:report_id/review
func (h *Handler) ReviewReport(c echo.Context) error {
	user := currentUser(c)
	reportID := c.Param("report_id")

	var req domain.ReviewReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	report, err := h.service.ReviewReport(ctx, user, reportID, &req)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, report)
}
