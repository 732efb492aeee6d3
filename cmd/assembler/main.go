package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/adapters/eventbroker/nats"
	"github.com/aalapcshah/Klipz-sub005/internal/adapters/repository/postgres"
	"github.com/aalapcshah/Klipz-sub005/internal/adapters/storage/minio"
	"github.com/aalapcshah/Klipz-sub005/internal/adapters/thumbnail"
	"github.com/aalapcshah/Klipz-sub005/internal/config"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/aalapcshah/Klipz-sub005/internal/core/service/assembler"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.NATS.URL == "" {
		logger.Error("NATS_URL is required for the standalone assembler")
		os.Exit(1)
	}

	// Initialize database
	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	logger.Info("db connection established")

	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}
	logger.Info("minio adapter initialized")

	// Initialize repositories
	unitOfWork := postgres.NewUnitOfWork(db)

	publisher, err := nats.NewPublisher(ctx, cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to init nats publisher", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close nats publisher", "error", err)
		}
	}()

	var thumbnailer port.ThumbnailGenerator
	if cfg.Thumbnail.Endpoint != "" {
		thumbnailer = thumbnail.NewClient(cfg.Thumbnail)
	}

	// Initialize services
	assemblerService := assembler.NewService(
		unitOfWork,
		minioAdapter,
		publisher,
		thumbnailer,
		cfg.Upload,
		cfg.Assembly,
		cfg.Server.PublicBaseURL,
		logger,
	)

	// re-dispatch assembly jobs interrupted by a previous crash
	if err := assemblerService.Recover(ctx); err != nil {
		logger.Error("failed to recover interrupted assembly jobs", "error", err)
	}

	// Initialize NATS consumer
	natsConsumer, err := nats.NewConsumer(cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to create NATS consumer", "error", err)
		os.Exit(1)
	}
	logger.Info("NATS consumer initialized")

	// Subscribe to NATS
	if err := natsConsumer.Subscribe(ctx, assemblerService); err != nil {
		logger.Error("failed to subscribe to NATS", "error", err)
		os.Exit(1)
	}
	logger.Info("NATS subscription active")

	// Wait for termination signal
	<-ctx.Done()
	logger.Info("gracefully shutting down assembler")

	if err := natsConsumer.Close(); err != nil {
		logger.Error("failed to close NATS consumer during shutdown", "error", err)
	}

	logger.Info("assembler shutdown complete")
}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}
