package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/erhospitalmatch/pkg/config"
	"github.com/zatekoja/erhospitalmatch/pkg/retry"
)

// staticProfileSchema creates the append-only static profile table. Rows are
// never updated; lookups take the lowest id per hpid.
const staticProfileSchema = `
CREATE TABLE IF NOT EXISTS hospital_static (
	id             BIGSERIAL PRIMARY KEY,
	hpid           TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	address        TEXT NOT NULL DEFAULT '',
	phone          TEXT NOT NULL DEFAULT '',
	total_er_beds  INTEGER NOT NULL DEFAULT 0,
	total_icu_beds INTEGER NOT NULL DEFAULT 0,
	total_beds     INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_hospital_static_hpid ON hospital_static (hpid, id);
`

// Client represents a PostgreSQL database client
type Client struct {
	db *sql.DB
}

// NewClient opens the static profile database, retrying the first ping with backoff
func NewClient(ctx context.Context, cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	retryConfig := retry.DefaultConfig()
	retryConfig.MaxTotalTimeout = 30 * time.Second
	err = retry.DoWithLog(ctx, retryConfig, "PostgreSQL",
		func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return db.PingContext(pingCtx)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("PostgreSQL connection attempt failed")
		},
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Connected to PostgreSQL")
	return &Client{db: db}, nil
}

// NewClientFromDB wraps an already opened connection, e.g. a sqlmock handle in tests
func NewClientFromDB(db *sql.DB) *Client {
	return &Client{db: db}
}

// EnsureSchema creates the tables the service writes to
func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, staticProfileSchema); err != nil {
		return fmt.Errorf("failed to create hospital_static table: %w", err)
	}
	return nil
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies the connection to the database
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
