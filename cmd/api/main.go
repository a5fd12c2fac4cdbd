package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saturnino-fabrica-de-software/presenca/internal/api"
	"github.com/saturnino-fabrica-de-software/presenca/internal/audit"
	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/database"
	"github.com/saturnino-fabrica-de-software/presenca/internal/face"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
	"github.com/saturnino-fabrica-de-software/presenca/internal/service"
	"github.com/saturnino-fabrica-de-software/presenca/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment wins
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read .env: %w", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Presenca API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("detector", cfg.DetectorProvider),
		slog.String("embedder", cfg.EmbedderProvider),
		slog.String("storage", cfg.StorageDriver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	poolCfg := database.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	pool, err := database.NewPool(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := database.MigrateUp(pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Face providers
	detector, err := face.NewDetector(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create face detector: %w", err)
	}
	embedder, err := face.NewEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("failed to create face embedder: %w", err)
	}
	extractor := face.NewExtractor(detector, face.ParseSelection(cfg.FaceSelection))

	uploader, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create uploader: %w", err)
	}

	identities := repository.NewIdentityRepository(pool)
	locations := repository.NewLocationRepository(pool)
	attendances := repository.NewAttendanceRepository(pool)
	auditLogger := audit.NewSlogLogger(logger)

	registration := service.NewRegistrationService(identities, extractor, embedder, uploader, auditLogger, logger).
		WithProviderName(cfg.EmbedderProvider)
	attendance := service.NewAttendanceService(identities, locations, attendances, extractor, embedder, uploader, auditLogger, logger).
		WithThreshold(cfg.MatchThreshold).
		WithProviderName(cfg.EmbedderProvider)

	deps := &api.Dependencies{
		Registration:    registration,
		Attendance:      attendance,
		DB:              pool,
		APIKeys:         cfg.APIKeys,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
		RequestTimeout:  cfg.RequestTimeout,
		MaxImageSize:    int64(cfg.MaxImageSize),
	}
	if disk, ok := uploader.(*storage.DiskUploader); ok {
		deps.UploadsDir = disk.Root()
	}

	if len(cfg.APIKeys) == 0 {
		logger.Warn("API_KEYS is empty, endpoints are unauthenticated")
	}

	// Setup router
	router := api.NewRouter(logger, deps)
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening",
			slog.String("addr", addr),
			slog.String("public_base_url", strings.TrimRight(cfg.PublicBaseURL, "/")),
		)
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down server...")
	done := make(chan error, 1)
	go func() { done <- router.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	case <-time.After(10 * time.Second):
		logger.Warn("shutdown timed out")
	}

	logger.Info("server stopped")

	return nil
}
