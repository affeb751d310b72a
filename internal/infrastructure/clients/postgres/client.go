package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mokarr/appointpro/migrations"
	"github.com/mokarr/appointpro/pkg/config"
	"github.com/mokarr/appointpro/pkg/retry"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

// serializationFailure is the SQLSTATE PostgreSQL reports when a SERIALIZABLE
// transaction cannot be committed
const serializationFailure = "40001"

// Client represents a PostgreSQL database client
type Client struct {
	db *sqlx.DB

	// OnRetry, when set, is called before a SERIALIZABLE transaction is re-run
	OnRetry func(ctx context.Context, name string)
}

// NewClient creates a new PostgreSQL client with exponential backoff retry
func NewClient(cfg *config.DatabaseConfig) (*Client, error) {
	db, err := sqlx.Open("postgres", cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	err = retry.DoWithLog(
		context.Background(),
		retry.DefaultConfig(),
		"PostgreSQL",
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return db.PingContext(ctx)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).
				Msg("PostgreSQL connection attempt failed, retrying")
		},
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Successfully connected to PostgreSQL")
	return &Client{db: db}, nil
}

// NewClientFromDB wraps an existing connection
func NewClientFromDB(db *sqlx.DB) *Client {
	return &Client{db: db}
}

// DB returns the underlying database connection
func (c *Client) DB() *sqlx.DB {
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

// Migrate applies the embedded goose migrations
func (c *Client) Migrate(ctx context.Context) error {
	return c.RunMigrations(ctx, "up")
}

// RunMigrations runs a goose command (up, down, status, version, redo, reset)
// against the embedded migrations
func (c *Client) RunMigrations(ctx context.Context, command string, args ...string) error {
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, c.db.DB, ".", args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	log.Info().Str("command", command).Msg("migrations run successfully")
	return nil
}

// WithTx runs fn in a transaction that is committed when fn returns nil and rolled
// back otherwise
func (c *Client) WithTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sqlx.Tx) error) error {
	tx, err := c.db.BeginTxx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Warn().Err(rbErr).Msg("transaction rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// WithSerializableTx runs fn in a SERIALIZABLE transaction and re-runs it while
// PostgreSQL reports a serialization failure. Any other error ends the loop.
func (c *Client) WithSerializableTx(ctx context.Context, name string, fn func(tx *sqlx.Tx) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	return retry.DoWithLog(ctx, retry.TxConfig(), name,
		func() error {
			err := c.WithTx(ctx, opts, fn)
			if err == nil || IsSerializationFailure(err) {
				return err
			}
			return retry.Stop(err)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Debug().Err(err).Str("tx", name).Int("attempt", attempt).Msg("serialization failure, retrying transaction")
			if c.OnRetry != nil {
				c.OnRetry(ctx, name)
			}
		},
	)
}

// IsSerializationFailure reports whether err carries SQLSTATE 40001
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == serializationFailure
}
