package kv

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresCache struct {
	db *pgxpool.Pool
}

func NewPostgresCache(db *pgxpool.Pool) *PostgresCache {
	return &PostgresCache{db: db}
}

func (c *PostgresCache) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := c.db.QueryRow(ctx, `
		SELECT value
		FROM kv_settings
		WHERE key = $1
	`, key).Scan(&value)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (c *PostgresCache) Set(ctx context.Context, key, value string) error {
	_, err := c.db.Exec(ctx, `
		INSERT INTO kv_settings (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = now()
	`, key, value)
	return err
}

func (c *PostgresCache) Clear(ctx context.Context) error {
	_, err := c.db.Exec(ctx, `DELETE FROM kv_settings`)
	return err
}
