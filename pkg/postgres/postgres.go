package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/jakechorley/team-rota/pkg/db"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	pingAttempts = 3
	pingTimeout  = 5 * time.Second
	pingBackoff  = 500 * time.Millisecond

	invalidTextRepresentation = "22P02"
	foreignKeyViolation       = "23503"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so the same queries run inside or
// outside a transaction
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PoolOptions tunes the connection pool. Zero values keep the pgxpool defaults.
type PoolOptions struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// DB provides database operations using PostgreSQL
type DB struct {
	pool   *pgxpool.Pool
	q      querier
	logger *zap.Logger
}

var _ db.Database = (*DB)(nil)

// NewDB creates a new PostgreSQL connection pool and waits for the database to answer a ping
func NewDB(ctx context.Context, connString string, opts PoolOptions, logger *zap.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}
	if opts.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = opts.HealthCheckPeriod
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	var pingErr error
	for i := 0; i < pingAttempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		pingErr = pool.Ping(pingCtx)
		cancel()
		if pingErr == nil {
			break
		}

		logger.Warn("Failed to ping database", zap.Int("attempt", i+1), zap.Error(pingErr))
		if i < pingAttempts-1 {
			time.Sleep(pingBackoff)
		}
	}
	if pingErr != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	return &DB{pool: pool, q: pool, logger: logger}, nil
}

// Close closes the database connection pool
func (d *DB) Close() {
	d.pool.Close()
}

// Ping checks the database is reachable
func (d *DB) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// WithinTransaction runs fn against a store bound to a single transaction.
// The transaction commits if fn returns nil and rolls back otherwise.
func (d *DB) WithinTransaction(ctx context.Context, fn func(tx db.RetentionStore) error) error {
	return d.inTx(ctx, func(tx *DB) error {
		return fn(tx)
	})
}

// inTx runs fn in a transaction. When d is already bound to a transaction fn runs in it.
func (d *DB) inTx(ctx context.Context, fn func(tx *DB) error) error {
	if _, ok := d.q.(pgx.Tx); ok {
		return fn(d)
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			d.logger.Warn("Failed to roll back transaction", zap.Error(err))
		}
	}()

	if err := fn(&DB{pool: d.pool, q: tx, logger: d.logger}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// notFound maps a missing row, or an id that is not a valid uuid, to db.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
		return db.ErrNotFound
	}
	return err
}

// isInvalidID reports whether postgres rejected a parameter as a malformed uuid
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

// invalidReference maps a write that names a missing row, or an id that is not a valid uuid,
// to db.ErrInvalidReference
func invalidReference(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == foreignKeyViolation || pgErr.Code == invalidTextRepresentation) {
		return db.ErrInvalidReference
	}
	return err
}

// RunMigrations executes all pending SQL migration files in order.
// It tracks which migrations have been applied in a schema_migrations table.
func (d *DB) RunMigrations(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	rows, err := d.pool.Query(ctx, `SELECT filename FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	applied, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to scan migration filenames: %w", err)
	}
	appliedSet := make(map[string]bool, len(applied))
	for _, filename := range applied {
		appliedSet[filename] = true
	}

	sqlFiles, err := migrationFiles()
	if err != nil {
		return err
	}

	for _, filename := range sqlFiles {
		if appliedSet[filename] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, "migrations/"+filename)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}

		// Each migration runs in its own transaction
		err = d.inTx(ctx, func(tx *DB) error {
			if _, err := tx.q.Exec(ctx, string(content)); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", filename, err)
			}
			if _, err := tx.q.Exec(ctx, `INSERT INTO schema_migrations (filename) VALUES ($1)`, filename); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", filename, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		d.logger.Info("Applied migration", zap.String("filename", filename))
	}

	return nil
}

// migrationFiles lists the embedded migrations in the order they are applied
func migrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)
	return sqlFiles, nil
}
