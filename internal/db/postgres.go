package db

import (
	"context"
	"errors"
	"time"

	"github.com/guuukimama/shop-manager/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ConnectPostgres opens the pool, pings it and bootstraps the schema.
func ConnectPostgres(ctx context.Context, cfg config.DBConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	poolCfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("connected to postgres",
		zap.Int32("max_conns", poolCfg.MaxConns),
	)

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info("schema initialized")
	return pool, nil
}

// initSchema creates the tables the repositories expect. Every statement
// is idempotent so it runs on every start.
func initSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

var schema = []string{
	// -------------------------------
	// CATALOG
	// -------------------------------
	`
	CREATE TABLE IF NOT EXISTS items (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		price BIGINT NOT NULL CHECK (price >= 0),
		category VARCHAR(255) NOT NULL DEFAULT '',
		emoji VARCHAR(32) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
	`,
	`CREATE INDEX IF NOT EXISTS items_category_idx ON items (category)`,

	// -------------------------------
	// SALES LEDGER (append only)
	// -------------------------------
	`
	CREATE TABLE IF NOT EXISTS sales (
		id BIGINT PRIMARY KEY,
		idempotency_key VARCHAR(64) NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL,
		lines JSONB NOT NULL,
		subtotal BIGINT NOT NULL,
		tax BIGINT NOT NULL,
		total BIGINT NOT NULL,
		service_type VARCHAR(16) NOT NULL,
		received BIGINT NOT NULL DEFAULT 0,
		change_due BIGINT NOT NULL DEFAULT 0
	)
	`,
	`CREATE INDEX IF NOT EXISTS sales_created_at_idx ON sales (created_at)`,

	// -------------------------------
	// KEY/VALUE SETTINGS
	// -------------------------------
	`
	CREATE TABLE IF NOT EXISTS kv_settings (
		key VARCHAR(128) PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
	`,
}
