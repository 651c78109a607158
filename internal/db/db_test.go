package db

import (
	"context"
	"os"
	"testing"

	"github.com/guuukimama/shop-manager/internal/config"

	"go.uber.org/zap"
)

func TestConnectPostgres(t *testing.T) {
	t.Run("missing DATABASE_URL is rejected", func(t *testing.T) {
		_, err := ConnectPostgres(context.Background(), config.DBConfig{}, zap.NewNop())
		if err == nil {
			t.Fatal("expected error without DATABASE_URL")
		}
	})

	t.Run("malformed DATABASE_URL is rejected", func(t *testing.T) {
		_, err := ConnectPostgres(context.Background(), config.DBConfig{URL: "://nope"}, zap.NewNop())
		if err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("valid DATABASE_URL connects and bootstraps schema", func(t *testing.T) {
		dsn := os.Getenv("TEST_DATABASE_URL")
		if dsn == "" {
			t.Skip("TEST_DATABASE_URL not set, skipping integration test")
		}

		pool, err := ConnectPostgres(context.Background(), config.DBConfig{URL: dsn}, zap.NewNop())
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		defer pool.Close()

		// Second run must be a no-op.
		if err := initSchema(context.Background(), pool); err != nil {
			t.Fatalf("schema not idempotent: %v", err)
		}
	})
}
