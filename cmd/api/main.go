package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guuukimama/shop-manager/internal/catalog"
	"github.com/guuukimama/shop-manager/internal/category"
	"github.com/guuukimama/shop-manager/internal/checkout"
	"github.com/guuukimama/shop-manager/internal/config"
	"github.com/guuukimama/shop-manager/internal/db"
	"github.com/guuukimama/shop-manager/internal/kv"
	"github.com/guuukimama/shop-manager/internal/live"
	"github.com/guuukimama/shop-manager/internal/logging"
	"github.com/guuukimama/shop-manager/internal/report"
	"github.com/guuukimama/shop-manager/internal/router"
	"github.com/guuukimama/shop-manager/internal/sales"
	"github.com/guuukimama/shop-manager/internal/settings"
	"github.com/guuukimama/shop-manager/internal/stats"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type stores struct {
	items catalog.Repository
	sink  sales.Sink
	cache kv.Cache
	pool  *pgxpool.Pool
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if !cfg.UsePostgres() {
		logger.Warn("DATABASE_URL not set, keeping everything in memory")
		return &stores{
			items: catalog.NewInMemoryRepository(),
			sink:  sales.NewInMemorySink(),
			cache: kv.NewMemoryCache(),
		}, nil
	}

	pool, err := db.ConnectPostgres(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return &stores{
		items: catalog.NewPostgresRepository(pool),
		sink:  sales.NewPostgresSink(pool),
		cache: kv.NewPostgresCache(pool),
		pool:  pool,
	}, nil
}

func main() {
	// ───────────────────────── ENV ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ───────────────────────── STORAGE ─────────────────────────
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}
	if st.pool != nil {
		defer st.pool.Close()
	}

	ids, err := sales.NewIDGenerator(cfg.Checkout.SnowflakeNode)
	if err != nil {
		logger.Fatal("snowflake node", zap.Int64("node", cfg.Checkout.SnowflakeNode), zap.Error(err))
	}

	// ───────────────────────── SERVICES ─────────────────────────
	hub := live.NewHub(logger.Named("live"))
	go hub.Run(ctx)

	catalogService := catalog.NewService(st.items, logger.Named("catalog"))
	categoryService := category.NewService(st.cache, catalogService, logger.Named("category"))
	checkoutService := checkout.NewService(
		catalogService,
		st.sink,
		ids,
		hub,
		checkout.Options{
			CommitTimeout: cfg.Checkout.CommitTimeout,
			KeypadEnabled: cfg.Checkout.KeypadEnabled,
			MaxSessions:   cfg.Checkout.MaxSessions,
			IdleTimeout:   cfg.Checkout.SessionIdle,
		},
		logger.Named("checkout"),
	)
	go checkoutService.RunReaper(ctx, time.Minute)
	statsService := stats.NewService(st.sink, cfg.Shop.Location)

	settingsService := settings.NewService(st.cache, logger.Named("settings"))
	settingsService.RegisterResetter("catalog", settings.ResetFunc(catalogService.Reset))
	settingsService.RegisterResetter("sales", settings.ResetFunc(st.sink.DeleteAll))

	// ───────────────────────── HTTP ─────────────────────────
	var pinger router.Pinger
	if st.pool != nil {
		pinger = st.pool
	}

	r := router.NewRouter(logger,
		router.Options{CORSOrigins: cfg.HTTP.CORSOrigins, DB: pinger},
		catalog.NewHandler(catalogService),
		category.NewHandler(categoryService),
		checkout.NewHandler(checkoutService),
		stats.NewHandler(statsService, report.WriteSalesWorkbook, hub.ServeWS),
		settings.NewHandler(settingsService),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("timezone", cfg.Shop.Timezone),
			zap.Bool("postgres", cfg.UsePostgres()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
