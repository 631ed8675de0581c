// Package data provides low-level data clients and connection factories.
package data

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roguepikachu/vanish/internal/config"
)

// PostgresDSN returns POSTGRES_URL when set, otherwise a DSN assembled from
// the discrete POSTGRES_* settings.
func PostgresDSN(c config.Config) string {
	if c.PostgresURL != "" {
		return c.PostgresURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     fmt.Sprintf("%s:%s", c.PostgresHost, c.PostgresPort),
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=" + url.QueryEscape(c.PostgresSSLMode),
	}
	return u.String()
}

// NewPostgresPool creates a new pgx connection pool from configuration.
func NewPostgresPool(ctx context.Context, c config.Config) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(PostgresDSN(c))
	if err != nil {
		return nil, err
	}
	cfg.MaxConnIdleTime = 30 * time.Second
	cfg.MaxConnLifetime = 30 * time.Minute
	return pgxpool.NewWithConfig(ctx, cfg)
}
