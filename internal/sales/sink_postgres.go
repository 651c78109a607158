package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresSink struct {
	db *pgxpool.Pool
}

func NewPostgresSink(db *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{db: db}
}

const saleColumns = `id, idempotency_key, created_at, lines, subtotal, tax, total, service_type, received, change_due`

func (s *PostgresSink) InsertSale(ctx context.Context, rec SaleRecord) (SaleRecord, error) {
	if err := rec.Validate(); err != nil {
		return SaleRecord{}, err
	}

	lines, err := json.Marshal(rec.Lines)
	if err != nil {
		return SaleRecord{}, err
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO sales (`+saleColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (idempotency_key) DO NOTHING
	`,
		int64(rec.ID),
		rec.IdempotencyKey,
		rec.CreatedAt,
		lines,
		rec.Subtotal,
		rec.Tax,
		rec.Total,
		string(rec.ServiceType),
		rec.Received,
		rec.Change,
	)
	if err != nil {
		return SaleRecord{}, err
	}
	if tag.RowsAffected() == 1 {
		return rec, nil
	}

	// replayed key: hand back what was stored the first time
	row := s.db.QueryRow(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE idempotency_key = $1
	`, rec.IdempotencyKey)

	stored, err := scanSale(row)
	if err != nil {
		return SaleRecord{}, fmt.Errorf("load sale for key %s: %w", rec.IdempotencyKey, err)
	}
	return stored, nil
}

func (s *PostgresSink) ListSales(ctx context.Context, f Filter) ([]SaleRecord, error) {
	var (
		where []string
		args  []any
	)
	if !f.From.IsZero() {
		args = append(args, f.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}

	query := `SELECT ` + saleColumns + ` FROM sales`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	if f.Descending {
		query += ` ORDER BY created_at DESC, id DESC`
	} else {
		query += ` ORDER BY created_at ASC, id ASC`
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SaleRecord, 0)
	for rows.Next() {
		rec, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresSink) DeleteAll(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DELETE FROM sales`)
	return err
}

func scanSale(row pgx.Row) (SaleRecord, error) {
	var (
		rec   SaleRecord
		id    int64
		lines []byte
		st    string
	)
	err := row.Scan(
		&id,
		&rec.IdempotencyKey,
		&rec.CreatedAt,
		&lines,
		&rec.Subtotal,
		&rec.Tax,
		&rec.Total,
		&st,
		&rec.Received,
		&rec.Change,
	)
	if err != nil {
		return SaleRecord{}, err
	}

	if err := json.Unmarshal(lines, &rec.Lines); err != nil {
		return SaleRecord{}, fmt.Errorf("decode lines of sale %d: %w", id, err)
	}
	rec.ID = snowflake.ID(id)
	rec.ServiceType = ServiceType(st)
	return rec, nil
}
