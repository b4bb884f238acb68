package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/orbitlms/coursework-api/internal/config"
	"github.com/orbitlms/coursework-api/internal/handler"
	"github.com/orbitlms/coursework-api/internal/middleware"
	"github.com/orbitlms/coursework-api/internal/router"
	"github.com/orbitlms/coursework-api/internal/service"
	"github.com/orbitlms/coursework-api/internal/storage"
	"github.com/orbitlms/coursework-api/pkg/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	gateway, cleanup, err := buildGateway(cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialise storage gateway: %v", err)
	}
	defer cleanup()

	notifier := buildNotifier(cfg, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	registry := service.NewUserRegistry(validate, logger)
	directory := service.NewCourseDirectory(registry, validate, logger)
	ledger, err := service.NewLedger(gateway, directory, registry, notifier, validate, logger)
	if err != nil {
		log.Fatalf("failed to load assignment ledger: %v", err)
	}

	userHandler := handler.NewUserHandler(registry, logger)
	courseHandler := handler.NewCourseHandler(directory, logger)
	assignmentHandler := handler.NewAssignmentHandler(ledger, logger)
	submissionHandler := handler.NewSubmissionHandler(ledger, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		UserHandler:       userHandler,
		CourseHandler:     courseHandler,
		AssignmentHandler: assignmentHandler,
		SubmissionHandler: submissionHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildGateway(cfg config.Config, logger zerolog.Logger) (storage.Gateway, func(), error) {
	noop := func() {}

	switch cfg.StorageBackend {
	case "database":
		db, err := storage.OpenDatabase(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		gateway, err := storage.NewDBGateway(db)
		if err != nil {
			return nil, noop, err
		}
		return gateway, noop, nil
	case "redis":
		client, err := storage.ConnectRedis(cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return storage.NewRedisGateway(client, ""), func() { _ = client.Close() }, nil
	default:
		gateway, err := storage.NewFileGateway(cfg.SnapshotPath, logger)
		if err != nil {
			return nil, noop, err
		}
		return gateway, noop, nil
	}
}

func buildNotifier(cfg config.Config, logger zerolog.Logger) events.Notifier {
	if cfg.NATSURL == "" {
		return events.NopNotifier{}
	}

	conn, err := events.Connect(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("event broker unavailable, notifications disabled")
		return events.NopNotifier{}
	}

	return events.NewNATSNotifier(conn, cfg.EventSubjectPrefix, logger)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
