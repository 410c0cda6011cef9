package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-metrics/internal/api/http"
	"github.com/spec-kit/ticket-metrics/internal/api/http/handlers"
	"github.com/spec-kit/ticket-metrics/internal/auth"
	"github.com/spec-kit/ticket-metrics/internal/config"
	"github.com/spec-kit/ticket-metrics/internal/events"
	"github.com/spec-kit/ticket-metrics/internal/mq"
	"github.com/spec-kit/ticket-metrics/internal/observability"
	"github.com/spec-kit/ticket-metrics/internal/persistence"
	"github.com/spec-kit/ticket-metrics/internal/service"
	"github.com/spec-kit/ticket-metrics/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	docs, closeStore, err := persistence.OpenDocumentRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open document store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var workers sync.WaitGroup
	var queue service.MessageQueue
	if cfg.Notification.MQTTBroker != "" {
		client, err := mq.Connect(mq.Config{
			BrokerURL: cfg.Notification.MQTTBroker,
			ClientID:  cfg.Notification.MQTTClientID,
			Logger:    logger,
		})
		if err != nil {
			logger.Fatal("failed to connect mqtt", zap.Error(err))
		}
		publisher := mq.NewPublisher(client, 3*time.Second)
		defer publisher.Close()

		notifications := worker.NewNotificationWorker(publisher, cfg.Notification.QueueSize, logger)
		workers.Add(1)
		go func() {
			defer workers.Done()
			notifications.Run(ctx)
		}()
		queue = notifications
	} else {
		logger.Info("MQTT_BROKER not set; notifications are logged only")
	}
	service.NewNotificationService(dispatcher, queue, logger, cfg.Notification).RegisterHandlers()

	documentService := service.NewDocumentService(docs, dispatcher, logger)
	reportService := service.NewReportService(documentService, dispatcher, metrics, logger,
		service.WithLocation(cfg.App.Location()))
	tokens := auth.NewTokenManager(cfg.Session.JWTSecret, cfg.Session.TTL())

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		BodyLimit:             cfg.App.MaxUploadBytes,
		ReadTimeout:           cfg.App.RequestTimeout(),
		ErrorHandler:          httptransport.ErrorHandler(logger, metrics),
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.CORSOrigins)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.App.Port, docs, metrics),
		Documents: handlers.NewDocumentsHandler(documentService),
		Reports:   handlers.NewReportsHandler(reportService),
		Sessions:  auth.NewSessionMiddleware(tokens, cfg.Session.CookieName, cfg.Session.SecureCookie, logger),
		StaticDir: cfg.App.StaticDir,
		Logger:    logger,
	})

	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("env", cfg.App.Env),
			zap.String("store", cfg.Store.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	workers.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
