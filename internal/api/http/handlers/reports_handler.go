package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-metrics/internal/api/dto"
	"github.com/spec-kit/ticket-metrics/internal/auth"
	"github.com/spec-kit/ticket-metrics/internal/service"
	apperrors "github.com/spec-kit/ticket-metrics/pkg/util"
)

// ReportsHandler serves metrics and backlog of the session's document.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reportService}
}

// Metrics GET /api/metrics.
func (h *ReportsHandler) Metrics(c *fiber.Ctx) error {
	principal, err := auth.RequireSession(c)
	if err != nil {
		return err
	}
	metrics, err := h.reports.Metrics(c.UserContext(), principal.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewMetricsResponse(metrics)})
}

// Backlog GET /api/backlog?limit=N.
func (h *ReportsHandler) Backlog(c *fiber.Ctx) error {
	principal, err := auth.RequireSession(c)
	if err != nil {
		return err
	}
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return apperrors.NewValidationError("limit must not be negative", map[string]any{"limit": limit})
	}
	backlog, err := h.reports.Backlog(c.UserContext(), principal.SessionID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBacklogResponse(backlog, limit)})
}
