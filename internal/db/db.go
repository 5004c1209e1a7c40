// Package db provides PostgreSQL persistence for the music platform catalog.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate value")

	// ErrConcurrentUpdate is returned when a transaction lost a race with another
	// transaction touching the same rows.
	ErrConcurrentUpdate = errors.New("concurrent update")
)

// PostgreSQL error codes that map onto the errors above.
const (
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Option configures the connection pool.
type Option func(*pgxpool.Config)

// WithMaxConns caps the number of pooled connections.
func WithMaxConns(n int32) Option {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string, opts ...Option) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	for _, opt := range opts {
		opt(config)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// InTx runs fn inside a single serializable transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
func (db *DB) InTx(ctx context.Context, fn func(Tx) error) error {
	tx, err := db.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{q: tx}); err != nil {
		return classify(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", classify(err))
	}
	return nil
}

// pgTx hands out repositories bound to one transaction.
type pgTx struct {
	q querier
}

func (t *pgTx) Identities() IdentityRepository { return &identityRepo{q: t.q} }
func (t *pgTx) Artists() ArtistRepository     { return &artistRepo{q: t.q} }
func (t *pgTx) Songs() SongRepository         { return &songRepo{q: t.q} }
func (t *pgTx) Playlists() PlaylistRepository { return &playlistRepo{q: t.q} }
func (t *pgTx) Plans() PlanRepository         { return &planRepo{q: t.q} }
func (t *pgTx) Users() UserRepository         { return &userRepo{q: t.q} }

// classify maps PostgreSQL constraint and serialization errors onto the
// package sentinels while keeping the original error in the chain.
func classify(err error) error {
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrConcurrentUpdate) {
		return err
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return fmt.Errorf("%w: %s: %w", ErrDuplicate, pgErr.ConstraintName, err)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%w: %w", ErrConcurrentUpdate, err)
	}
	return err
}
