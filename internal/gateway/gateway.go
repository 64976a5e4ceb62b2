// Package gateway owns the single pooled connection set to the target
// DBMS (spec §4.1) and is the only package that issues network I/O against
// Postgres. It enforces the explain-safety rules, statement-timeout
// discipline, and connection-failure retry policy; the engine (for
// EXPLAIN) and the statistics provider are its internal consumers.
package gateway

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nethalo/indexwright/internal/core"
)

// Gateway wraps a pgxpool.Pool sized per spec §4.1 (min 2, max 10 by
// default, configurable via core.Options).
type Gateway struct {
	pool    *pgxpool.Pool
	verbose bool
}

// Open lazily establishes the pool on first use and returns a ready
// Gateway. Lifecycle: explicit Close releases all pool connections (spec §9
// "Global caches").
func Open(ctx context.Context, dsn string, opts core.Options) (*Gateway, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}

	if opts.PoolMin <= 0 {
		opts.PoolMin = 2
	}
	if opts.PoolMax <= 0 {
		opts.PoolMax = 10
	}
	cfg.MinConns = int32(opts.PoolMin)
	cfg.MaxConns = int32(opts.PoolMax)
	cfg.MaxConnLifetime = 60 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.ConnConfig.ConnectTimeout = 10 * time.Second

	EnableDebugLogging(opts.Verbose)
	if opts.Verbose {
		log.Printf("[DEBUG] gateway.Open: pool min=%d max=%d", opts.PoolMin, opts.PoolMax)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, core.NewError(core.KindConnectionFailure, "gateway.Open", "", err.Error(), err)
	}

	return &Gateway{pool: pool, verbose: opts.Verbose}, nil
}

// Close releases every pooled connection. Safe to call once; idempotent
// calls beyond the first are a caller error but do not panic.
func (g *Gateway) Close() {
	if g.pool != nil {
		g.pool.Close()
	}
}

// Query runs sql through the pool with connection-failure retry, for use
// by the statistics provider's catalog queries.
func (g *Gateway) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if g.verbose {
		log.Printf("[DEBUG] gateway.Query: %s args=%v", sql, args)
	}
	var rows pgx.Rows
	err := WithRetry(ctx, "gateway.Query", sql, func() error {
		var qerr error
		rows, qerr = g.pool.Query(ctx, sql, args...)
		return qerr
	})
	return rows, err
}

// QueryRow runs sql through the pool and returns a single row handle. It
// does not retry: any error, including a connection failure, surfaces
// from the row's Scan.
func (g *Gateway) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return g.pool.QueryRow(ctx, sql, args...)
}

// Pool exposes the underlying pool for callers that need it directly, such
// as the CLI's connection check.
func (g *Gateway) Pool() *pgxpool.Pool {
	return g.pool
}
