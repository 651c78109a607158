package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/guuukimama/shop-manager/internal/config"
	"github.com/guuukimama/shop-manager/internal/db"
	"github.com/guuukimama/shop-manager/internal/logging"
	"github.com/guuukimama/shop-manager/internal/report"
	"github.com/guuukimama/shop-manager/internal/sales"
	"github.com/guuukimama/shop-manager/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("report worker starting")

	// Validate settings: the worker needs the shared ledger and a bucket.
	if !cfg.UsePostgres() {
		logger.Fatal("DATABASE_URL is not set")
	}
	if !cfg.R2.Enabled() {
		logger.Fatal("R2 is not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.ConnectPostgres(ctx, cfg.DB, logger)
	if err != nil {
		logger.Fatal("postgres", zap.Error(err))
	}
	defer pool.Close()

	r2, err := storage.NewR2Client(ctx, cfg.R2)
	if err != nil {
		logger.Fatal("r2 init failed", zap.Error(err))
	}

	exporter := report.NewDailyExporter(sales.NewPostgresSink(pool), r2, cfg.Shop.Location, logger)

	logger.Info("report worker running",
		zap.Duration("interval", cfg.Report.Interval),
		zap.String("bucket", cfg.R2.Bucket),
	)
	exporter.Run(ctx, cfg.Report.Interval)
	logger.Info("report worker stopped")
}
