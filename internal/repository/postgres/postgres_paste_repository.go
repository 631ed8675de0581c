// Package postgres provides a Postgres-backed implementation of the paste repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roguepikachu/vanish/internal/domain"
	"github.com/roguepikachu/vanish/internal/repository"
	"github.com/roguepikachu/vanish/pkg/logger"
)

// PasteRepository implements repository.PasteRepository using Postgres.
// Consume is a single conditional UPDATE, so the row lock taken by Postgres
// serializes concurrent readers of one paste.
type PasteRepository struct {
	pool *pgxpool.Pool
}

// NewPasteRepository creates a new Postgres-backed paste repository.
func NewPasteRepository(pool *pgxpool.Pool) *PasteRepository {
	return &PasteRepository{pool: pool}
}

// EnsureSchema creates required tables if they don't exist.
func (r *PasteRepository) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS pastes (
    id TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    expires_at TIMESTAMPTZ NULL,
    max_views INTEGER NULL CHECK (max_views IS NULL OR max_views > 0),
    views INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_pastes_expires_at ON pastes (expires_at);
`
	_, err := r.pool.Exec(ctx, schema)
	if err != nil {
		return err
	}
	logger.Info(ctx, "postgres schema ensured")
	return nil
}

// Insert adds a new paste to Postgres.
func (r *PasteRepository) Insert(ctx context.Context, p domain.Paste) error {
	const q = `
INSERT INTO pastes (id, content, created_at, expires_at, max_views, views)
VALUES ($1, $2, $3, $4, $5, 0)
ON CONFLICT (id) DO NOTHING
`
	ct, err := r.pool.Exec(ctx, q, p.ID, p.Content, p.CreatedAt, p.ExpiresAt, p.MaxViews)
	if err != nil {
		return fmt.Errorf("insert paste: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrDuplicateID
	}
	return nil
}

// Consume counts one view when the paste is readable at now.
func (r *PasteRepository) Consume(ctx context.Context, id string, now time.Time) (domain.ConsumedPaste, error) {
	const q = `
UPDATE pastes
SET views = views + 1
WHERE id = $1
  AND (expires_at IS NULL OR expires_at >= $2)
  AND (max_views IS NULL OR views < max_views)
RETURNING content, expires_at, max_views, views
`
	var p domain.Paste
	err := r.pool.QueryRow(ctx, q, id, now).Scan(&p.Content, &p.ExpiresAt, &p.MaxViews, &p.Views)
	if err == nil {
		return p.Snapshot(), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.ConsumedPaste{}, fmt.Errorf("consume paste: %w", err)
	}
	return domain.ConsumedPaste{}, r.whyUnreadable(ctx, id, now)
}

// whyUnreadable classifies a consume that matched no row. Pastes only ever
// move towards unreadable, so a second read cannot contradict the UPDATE.
func (r *PasteRepository) whyUnreadable(ctx context.Context, id string, now time.Time) error {
	const q = `SELECT expires_at, max_views, views FROM pastes WHERE id = $1`
	var p domain.Paste
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ExpiresAt, &p.MaxViews, &p.Views)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrPasteNotFound
		}
		return fmt.Errorf("query paste: %w", err)
	}
	if err := p.Readable(now); err != nil {
		return err
	}
	return fmt.Errorf("consume paste %s: update matched no row", id)
}

// Sweep deletes pastes that can no longer be read at now.
func (r *PasteRepository) Sweep(ctx context.Context, now time.Time) (int, error) {
	const q = `
DELETE FROM pastes
WHERE (expires_at IS NOT NULL AND expires_at < $1)
   OR (max_views IS NOT NULL AND views >= max_views)
`
	ct, err := r.pool.Exec(ctx, q, now)
	if err != nil {
		return 0, fmt.Errorf("sweep pastes: %w", err)
	}
	return int(ct.RowsAffected()), nil
}

var (
	_ repository.PasteRepository = (*PasteRepository)(nil)
	_ repository.Sweeper         = (*PasteRepository)(nil)
)
