package http

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-metrics/internal/api/http/handlers"
	"github.com/spec-kit/ticket-metrics/internal/auth"
	apperrors "github.com/spec-kit/ticket-metrics/pkg/util"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Documents *handlers.DocumentsHandler
	Reports   *handlers.ReportsHandler
	Sessions  *auth.SessionMiddleware
	StaticDir string
	Logger    *zap.Logger
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/stats", cfg.Health.Stats)

	api := app.Group("/api")
	api.Get("/health", cfg.Health.API)
	api.Post("/upload-csv", cfg.Documents.UploadAck)

	session := api.Group("", cfg.Sessions.Handle)
	session.Post("/documents", cfg.Documents.Upload)
	session.Get("/documents", cfg.Documents.Get)
	session.Delete("/documents", cfg.Documents.Delete)
	session.Get("/metrics", cfg.Reports.Metrics)
	session.Get("/backlog", cfg.Reports.Backlog)

	api.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("route", map[string]any{"path": c.Path()})
	})

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registerStatic(app, cfg.StaticDir, logger)
}

// registerStatic serves an externally built browser client from dir, answering
// unknown paths with index.html so client-side navigation works. The module
// ships no client; without one only the API is served.
func registerStatic(app *fiber.App, dir string, logger *zap.Logger) {
	if dir == "" {
		logger.Debug("static directory not configured, serving API only")
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Warn("static directory not found, serving API only", zap.String("dir", dir))
		return
	}

	app.Static("/", dir, fiber.Static{Index: "index.html"})

	index := filepath.Join(dir, "index.html")
	app.Use(func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet || strings.HasPrefix(c.Path(), "/api/") {
			return c.Next()
		}
		if _, err := os.Stat(index); err != nil {
			return c.Next()
		}
		return c.SendFile(index)
	})
}
