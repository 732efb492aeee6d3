package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aalapcshah/Klipz-sub005/internal/adapters/eventbroker/nats"
	"github.com/aalapcshah/Klipz-sub005/internal/adapters/handlers/http/chi"
	stream2 "github.com/aalapcshah/Klipz-sub005/internal/adapters/handlers/http/chi/v1/stream"
	upload2 "github.com/aalapcshah/Klipz-sub005/internal/adapters/handlers/http/chi/v1/upload"
	"github.com/aalapcshah/Klipz-sub005/internal/adapters/repository/postgres"
	"github.com/aalapcshah/Klipz-sub005/internal/adapters/storage/minio"
	"github.com/aalapcshah/Klipz-sub005/internal/adapters/thumbnail"
	"github.com/aalapcshah/Klipz-sub005/internal/config"
	"github.com/aalapcshah/Klipz-sub005/internal/core/port"
	"github.com/aalapcshah/Klipz-sub005/internal/core/service/assembler"
	"github.com/aalapcshah/Klipz-sub005/internal/core/service/cleanup"
	"github.com/aalapcshah/Klipz-sub005/internal/core/service/stream"
	"github.com/aalapcshah/Klipz-sub005/internal/core/service/upload"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}(db)
	logger.Info("db connection established")

	//storage
	minioAdapter, err := minio.NewAdapter(ctx, cfg.Minio, logger)
	if err != nil {
		logger.Error("failed to init minio", "error", err)
		os.Exit(1)
	}

	//repositories
	unitOfWork := postgres.NewUnitOfWork(db)

	// event broker; absent broker forces inline assembly dispatch
	var publisher port.EventPublisher
	if cfg.NATS.URL != "" {
		natsPublisher, pubErr := nats.NewPublisher(ctx, cfg.NATS, logger)
		if pubErr != nil {
			logger.Error("failed to init nats publisher", "error", pubErr)
			os.Exit(1)
		}
		defer func() {
			if err := natsPublisher.Close(); err != nil {
				logger.Error("failed to close nats publisher", "error", err)
			}
		}()
		publisher = natsPublisher
		logger.Info("nats publisher initialized")
	}

	var thumbnailer port.ThumbnailGenerator
	if cfg.Thumbnail.Endpoint != "" {
		thumbnailer = thumbnail.NewClient(cfg.Thumbnail)
	}

	//services
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

	var dispatcher port.AssemblyDispatcher = assemblerService
	if !cfg.Assembly.Inline && publisher != nil {
		dispatcher = nats.NewAssemblyDispatcher(publisher, logger)
		logger.Info("assembly dispatch delegated to event broker")
	}

	uploadService := upload.NewService(
		unitOfWork,
		minioAdapter,
		dispatcher,
		publisher,
		cfg.Upload,
		cfg.Assembly,
		cfg.Server.PublicBaseURL,
		logger,
	)
	streamService := stream.NewService(unitOfWork, minioAdapter, logger)
	cleanupService := cleanup.NewCleanupService(unitOfWork, minioAdapter, logger)

	// re-dispatch assembly jobs interrupted by a previous crash
	if cfg.Assembly.Inline {
		if err := assemblerService.Recover(ctx); err != nil {
			logger.Error("failed to recover interrupted assembly jobs", "error", err)
		}
	}

	//http
	uploadHandler := upload2.NewUploadHandlerV1(uploadService, uploadService, cleanupService, logger)
	streamHandler := stream2.NewStreamHandlerV1(streamService, logger)

	// chunk payloads dominate request bodies; leave headroom for the envelope
	maxBodySize := cfg.Upload.MaxChunkSize + 1<<20

	router := chi.NewRouter(logger, uploadHandler, streamHandler, cfg.Env.Env, maxBodySize)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	// init cleanup task
	wg.Add(1)
	go func() {
		defer wg.Done()
		initCleanupTask(ctx, cleanupService, cfg.Upload.CleanupEvery, logger)
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}

	wg.Wait()
	logger.Info("app shutdown complete")

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

func initCleanupTask(ctx context.Context, service port.CleanupService, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("cleanup task initialized", "interval", every)

	for {
		select {
		case <-ticker.C:
			logger.Info("cleanup task starting")
			expired, err := service.CleanupExpiredSessions(ctx, time.Now())
			if err != nil {
				logger.Error("failed to cleanup expired sessions", "error", err)
			} else {
				logger.Info("cleanup task completed successfully", "expired", expired)
			}
		case <-ctx.Done():
			logger.Info("cleanup task stopped")
			return
		}
	}

}
