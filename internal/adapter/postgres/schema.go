package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	your_price DOUBLE PRECISION NOT NULL CHECK (your_price >= 0),
	url        TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS competitors (
	id            TEXT PRIMARY KEY,
	product_id    TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	url           TEXT NOT NULL,
	name          TEXT,
	current_price DOUBLE PRECISION NOT NULL,
	last_checked  TIMESTAMPTZ NOT NULL DEFAULT now(),
	image_url     TEXT
);

CREATE INDEX IF NOT EXISTS competitors_product_id_idx ON competitors (product_id);
`

// EnsureSchema creates the tables if they do not exist yet. It is safe to call
// on every process start.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
