package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GnandeepVenigalla/gd25th-backend/internal/config"
	mediaService "github.com/GnandeepVenigalla/gd25th-backend/internal/services/media"
	uploadService "github.com/GnandeepVenigalla/gd25th-backend/internal/services/upload"
	"github.com/GnandeepVenigalla/gd25th-backend/internal/storage/mongo"
)

// ReconcileWorker periodically lists object-store keys with no catalog
// record. Divergence is expected (abandoned sessions, unrecognized
// extensions, failed catalog writes); the sweep makes it observable.
type ReconcileWorker struct {
	uploads  *uploadService.Service
	interval time.Duration
	logger   *slog.Logger
}

func NewReconcileWorker(uploads *uploadService.Service, interval time.Duration) *ReconcileWorker {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	return &ReconcileWorker{
		uploads:  uploads,
		interval: interval,
		logger:   logger,
	}
}

func (rw *ReconcileWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(rw.interval)
	defer ticker.Stop()

	rw.logger.Info("Reconcile worker started",
		"interval", rw.interval.String())

	// Run once immediately on startup
	rw.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			rw.logger.Info("Reconcile worker shutting down")
			return
		case <-ticker.C:
			rw.sweep(ctx)
		}
	}
}

func (rw *ReconcileWorker) sweep(ctx context.Context) {
	startTime := time.Now()

	rw.logger.Info("Starting orphan sweep")

	orphans, err := rw.uploads.ReconcileOrphans(ctx)
	if err != nil {
		rw.logger.Error("Failed to sweep orphans",
			"error", err.Error(),
			"duration_ms", time.Since(startTime).Milliseconds())
		return
	}

	for _, key := range orphans {
		rw.logger.Warn("Found uncataloged store object", "key", key)
	}

	duration := time.Since(startTime)

	rw.logger.Info("Completed orphan sweep",
		"orphans_found", len(orphans),
		"duration_ms", duration.Milliseconds(),
		"duration", duration.String())
}

func main() {
	// Load config
	cfg := config.MustLoad()

	// Initialize object store and catalog connections
	store, err := mediaService.NewService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize object store:", err)
	}

	catalog, err := mongo.NewCatalog(cfg)
	if err != nil {
		log.Fatal("Failed to initialize media catalog:", err)
	}
	slog.Info("Connected to object store and media catalog")

	uploads := uploadService.NewService(store, catalog, nil,
		time.Duration(cfg.Media.PresignedURLTTL)*time.Second)

	// Create worker with 10-minute interval
	worker := NewReconcileWorker(uploads, 10*time.Minute)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("Received shutdown signal")
		cancel()
	}()

	// Start the worker
	worker.Start(ctx)

	slog.Info("Reconcile worker stopped")
}
