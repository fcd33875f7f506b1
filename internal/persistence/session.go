// Package persistence contains the session abstraction and helpers shared by repository
// implementations.
package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Session is an exclusive lease on one pooled connection. *pgxpool.Conn satisfies it.
// Release must be called exactly once on every path.
type Session interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Release()
}

// SessionProvider hands out sessions from a bounded pool.
type SessionProvider interface {
	Acquire(ctx context.Context) (Session, error)
}

// PoolConfig tunes the bounded connection pool.
type PoolConfig struct {
	URL            string
	MaxConns       int32
	IdleTimeout    time.Duration
	ConnectTimeout time.Duration
}

// PoolProvider is the pgxpool-backed SessionProvider. It is created once at startup and
// closed on shutdown.
type PoolProvider struct {
	pool *pgxpool.Pool
}

// NewPoolProvider wraps an existing pool.
func NewPoolProvider(pool *pgxpool.Pool) *PoolProvider {
	return &PoolProvider{pool: pool}
}

// Open parses cfg and creates the pool. Connections are established lazily.
func Open(ctx context.Context, cfg PoolConfig) (*PoolProvider, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.IdleTimeout > 0 {
		poolCfg.MaxConnIdleTime = cfg.IdleTimeout
	}
	if cfg.ConnectTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	return &PoolProvider{pool: pool}, nil
}

// Acquire leases a connection from the pool.
func (p *PoolProvider) Acquire(ctx context.Context) (Session, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Close closes every connection in the pool.
func (p *PoolProvider) Close() {
	p.pool.Close()
}

// Probe acquires a session, asks the database for its clock and releases the session.
func Probe(ctx context.Context, provider SessionProvider) (time.Time, error) {
	session, err := provider.Acquire(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("acquire session: %w", err)
	}
	defer session.Release()

	var now time.Time
	if err := session.QueryRow(ctx, "SELECT NOW()").Scan(&now); err != nil {
		return time.Time{}, fmt.Errorf("probe query: %w", err)
	}
	return now, nil
}
