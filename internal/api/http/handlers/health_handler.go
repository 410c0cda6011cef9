package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-metrics/internal/api/dto"
	"github.com/spec-kit/ticket-metrics/internal/observability"
	apperrors "github.com/spec-kit/ticket-metrics/pkg/util"
)

// Pinger is a dependency the readiness endpoint checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness checks.
type HealthHandler struct {
	serviceName string
	version     string
	port        string
	store       Pinger
	metrics     *observability.Metrics
	clock       func() time.Time
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version, port string, store Pinger, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		port:        port,
		store:       store,
		metrics:     metrics,
		clock:       time.Now,
	}
}

// API GET /api/health.
func (h *HealthHandler) API(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status: "ok",
		Server: h.serviceName,
		Port:   h.port,
		Time:   h.clock().UTC().Format(time.RFC3339),
	})
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking the document store.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		return apperrors.NewDependencyUnavailable(map[string]any{"document_store": err.Error()})
	}
	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": fiber.Map{"document_store": "ok"},
	})
}

// Stats GET /health/stats.
func (h *HealthHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}
