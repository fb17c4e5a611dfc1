// Package db keeps spawn statistics in PostgreSQL.
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB owns the connection pool behind the spawn statistics store.
type DB struct {
	pool  *pgxpool.Pool
	stats *StatsRepository
}

// Open migrates the spawn_stats schema on dsn, then connects and returns a
// handle whose Stats repository is ready for use.
func Open(ctx context.Context, dsn string) (*DB, error) {
	if _, err := RunMigrations(ctx, dsn); err != nil {
		return nil, err
	}
	return New(ctx, dsn)
}

// New connects to an already migrated database.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to stats database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging stats database: %w", err)
	}
	return &DB{pool: pool, stats: NewStatsRepository(pool)}, nil
}

// Stats returns the repository the generator flushes records into.
func (d *DB) Stats() *StatsRepository {
	return d.stats
}

// Close releases the pool. Records already applied stay committed.
func (d *DB) Close() {
	stat := d.pool.Stat()
	slog.Debug("closing stats database",
		"acquireCount", stat.AcquireCount(),
		"totalConns", stat.TotalConns())
	d.pool.Close()
}

// Pool exposes the pool so tests can reset spawn_stats between cases.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}
