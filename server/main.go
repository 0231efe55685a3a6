package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/device-mockup/internal/config"
	"github.com/phambaophuc/device-mockup/internal/devices"
	"github.com/phambaophuc/device-mockup/internal/http/handlers"
	"github.com/phambaophuc/device-mockup/internal/http/routes"
	"github.com/phambaophuc/device-mockup/internal/services/assets"
	"github.com/phambaophuc/device-mockup/internal/services/audit"
	"github.com/phambaophuc/device-mockup/internal/services/processor"
	"github.com/phambaophuc/device-mockup/internal/services/queue"
	"github.com/phambaophuc/device-mockup/internal/services/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultBezelDir = "./assets/bezels"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		logger.Fatal("Failed to load device catalog", zap.Error(err))
	}
	logger.Info("Device catalog loaded",
		zap.Strings("models", catalog.Keys()),
		zap.String("default_model", catalog.DefaultKey()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize services
	compositor := processor.NewCompositor(catalog, newAssetStore(cfg, logger), logger,
		processor.WithMaxPixels(cfg.Mockup.MaxPixels))

	storageSvc, err := storage.NewStorageService(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage service", zap.Error(err))
	}
	defer storageSvc.Close()
	if !storageSvc.BlobEnabled() {
		logger.Warn("Blob storage not configured, mockups will not be persisted")
	}

	var auditLog handlers.AuditLog
	var queueAudit queue.AuditLog
	if cfg.Audit.DBPath != "" {
		auditStore, err := audit.Open(ctx, cfg.Audit.DBPath)
		if err != nil {
			logger.Warn("Failed to open audit log", zap.String("path", cfg.Audit.DBPath), zap.Error(err))
		} else {
			defer auditStore.Close()
			auditLog = auditStore
			queueAudit = auditStore
		}
	}

	var jobQueue handlers.JobQueue
	queueSvc, err := queue.NewQueueService(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, compositor, storageSvc, queueAudit, logger)
	if err != nil {
		logger.Warn("Failed to initialize queue service", zap.Error(err))
		// Continue without queue service for basic functionality
	} else {
		defer queueSvc.Close()
		jobQueue = queueSvc

		for i := 1; i <= cfg.RabbitMQ.Workers; i++ {
			if err := queueSvc.StartWorker(ctx, i); err != nil {
				logger.Error("Failed to start worker", zap.Int("worker_id", i), zap.Error(err))
			}
		}
	}

	// Initialize handlers
	mockupHandler := handlers.NewMockupHandler(compositor, catalog, storageSvc, jobQueue, auditLog, logger, cfg)

	router := routes.NewRouter(mockupHandler, logger, routes.Options{
		MaxBodySize:     cfg.Server.MaxBodySize,
		RateLimiter:     storageSvc,
		RateLimitCount:  cfg.RateLimit.Requests,
		RateLimitWindow: cfg.RateLimit.Window,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if queueSvc != nil {
		if err := queueSvc.Drain(shutdownCtx); err != nil {
			logger.Warn("Queue workers did not finish", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zcfg.Build()
}

func loadCatalog(cfg *config.Config) (*devices.Catalog, error) {
	catalog, err := devices.LoadFile(cfg.Assets.DeviceCatalog)
	if err != nil {
		return nil, err
	}
	if cfg.Mockup.DefaultModel == "" || cfg.Mockup.DefaultModel == catalog.DefaultKey() {
		return catalog, nil
	}
	return devices.New(cfg.Mockup.DefaultModel, catalog.All())
}

// newAssetStore picks the bezel backend: a local directory, an HTTP base
// URL, the Supabase assets bucket, then the bundled directory.
func newAssetStore(cfg *config.Config, logger *zap.Logger) assets.Store {
	switch {
	case cfg.Assets.BezelDir != "":
		logger.Info("Serving bezels from directory", zap.String("dir", cfg.Assets.BezelDir))
		return assets.NewDirStore(cfg.Assets.BezelDir)
	case cfg.Assets.BezelBaseURL != "":
		logger.Info("Serving bezels over HTTP", zap.String("base_url", cfg.Assets.BezelBaseURL))
		return assets.NewHTTPStore(cfg.Assets.BezelBaseURL)
	case cfg.Supabase.URL != "" && cfg.Supabase.ASSETS_BUCKET != "":
		logger.Info("Serving bezels from Supabase", zap.String("bucket", cfg.Supabase.ASSETS_BUCKET))
		return assets.NewSupabaseStore(storage.NewSupabaseClient(cfg), cfg.Supabase.ASSETS_BUCKET, "")
	default:
		logger.Info("Serving bezels from directory", zap.String("dir", defaultBezelDir))
		return assets.NewDirStore(defaultBezelDir)
	}
}
