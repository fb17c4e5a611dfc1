package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/spawnforge/internal/spawnlog"
)

// StatsRepository stores spawn statistics in the spawn_stats table.
// It implements spawnlog.Store.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

const statsColumns = `asset, ratio, successes, attempts, method, avg_ms, times_generated, delta_ms`

// Apply merges recs into the rows of room inside one transaction. Existing
// rows are locked so concurrent passes over the same room do not lose
// updates.
func (r *StatsRepository) Apply(ctx context.Context, room string, recs []spawnlog.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for room %s: %w", room, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "room", room, "error", err)
		}
	}()

	existing, err := queryRows(ctx, tx,
		`SELECT `+statsColumns+` FROM spawn_stats WHERE room = $1 FOR UPDATE`, room)
	if err != nil {
		return fmt.Errorf("locking stats of room %s: %w", room, err)
	}

	rows := make(map[string]spawnlog.Row, len(existing))
	for _, row := range existing {
		rows[row.Asset] = row
	}
	rows = spawnlog.MergeAll(rows, recs)

	batch := &pgx.Batch{}
	for _, rec := range recs {
		row, ok := rows[rec.Asset]
		if !ok {
			continue
		}
		delete(rows, rec.Asset)
		batch.Queue(`
			INSERT INTO spawn_stats (room, `+statsColumns+`, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
			ON CONFLICT (room, asset) DO UPDATE SET
				ratio = EXCLUDED.ratio,
				successes = EXCLUDED.successes,
				attempts = EXCLUDED.attempts,
				method = EXCLUDED.method,
				avg_ms = EXCLUDED.avg_ms,
				times_generated = EXCLUDED.times_generated,
				delta_ms = EXCLUDED.delta_ms,
				updated_at = now()`,
			room, row.Asset, row.Ratio, row.Successes, row.Attempts,
			row.Method, row.AvgMS, row.TimesGenerated, row.DeltaMS)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upserting stats of room %s: %w", room, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for room %s: %w", room, err)
	}

	slog.Debug("spawn stats saved",
		"room", room,
		"records", len(recs))
	return nil
}

// Rows returns the rows of room ordered by asset.
func (r *StatsRepository) Rows(ctx context.Context, room string) ([]spawnlog.Row, error) {
	rows, err := queryRows(ctx, r.pool,
		`SELECT `+statsColumns+` FROM spawn_stats WHERE room = $1 ORDER BY asset`, room)
	if err != nil {
		return nil, fmt.Errorf("loading stats of room %s: %w", room, err)
	}
	return rows, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryRows(ctx context.Context, q querier, query string, room string) ([]spawnlog.Row, error) {
	rows, err := q.Query(ctx, query, room)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []spawnlog.Row
	for rows.Next() {
		row := spawnlog.Row{Room: room}
		if err := rows.Scan(&row.Asset, &row.Ratio, &row.Successes, &row.Attempts,
			&row.Method, &row.AvgMS, &row.TimesGenerated, &row.DeltaMS); err != nil {
			return nil, fmt.Errorf("scanning stats row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stats rows: %w", err)
	}
	return out, nil
}
