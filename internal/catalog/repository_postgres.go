package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// --------------------------------------------------
// LIST (optionally by category)
// --------------------------------------------------
func (r *PostgresRepository) List(ctx context.Context, category string) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, price, category, emoji, created_at, updated_at
		FROM items
		WHERE $1 = '' OR category = $1
		ORDER BY created_at, id
	`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID,
			&it.Name,
			&it.Price,
			&it.Category,
			&it.Emoji,
			&it.CreatedAt,
			&it.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

// itemID normalizes id for the UUID column. Anything that is not a UUID
// cannot name a stored item.
func itemID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrNotFound
	}
	return parsed.String(), nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Item, error) {
	id, err := itemID(id)
	if err != nil {
		return nil, err
	}

	var it Item
	err = r.db.QueryRow(ctx, `
		SELECT id, name, price, category, emoji, created_at, updated_at
		FROM items
		WHERE id = $1
	`, id).Scan(
		&it.ID,
		&it.Name,
		&it.Price,
		&it.Category,
		&it.Emoji,
		&it.CreatedAt,
		&it.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, item *Item) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO items (id, name, price, category, emoji, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		item.ID,
		item.Name,
		item.Price,
		item.Category,
		item.Emoji,
		item.CreatedAt,
		item.UpdatedAt,
	)
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, item *Item) error {
	id, err := itemID(item.ID)
	if err != nil {
		return err
	}

	cmd, err := r.db.Exec(ctx, `
		UPDATE items
		SET name = $1,
		    price = $2,
		    category = $3,
		    emoji = $4,
		    updated_at = $5
		WHERE id = $6
	`,
		item.Name,
		item.Price,
		item.Category,
		item.Emoji,
		item.UpdatedAt,
		id,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	id, err := itemID(id)
	if err != nil {
		return err
	}

	cmd, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM items`)
	return err
}
