package spawnlog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const progressWidth = 50

// Logger collects per-entry outcomes of one room pass and merges them into
// a Store on Flush.
type Logger struct {
	room    string
	store   Store
	start   time.Time
	records []Record
	now     func() time.Time
}

// New creates a logger for room. A nil store discards records.
func New(room string, store Store) *Logger {
	if store == nil {
		store = NopStore{}
	}
	return &Logger{
		room:  room,
		store: store,
		start: time.Now(),
		now:   time.Now,
	}
}

// StartTimer marks the start of the next entry.
func (l *Logger) StartTimer() {
	l.start = l.now()
}

// OutputAndLog records the outcome of the current entry.
func (l *Logger) OutputAndLog(name string, requested, placed, attempts, attemptCap int, method string) {
	rec := Record{
		Room:       l.room,
		Asset:      name,
		Requested:  requested,
		Placed:     placed,
		Attempts:   attempts,
		AttemptCap: attemptCap,
		Method:     method,
		Elapsed:    l.now().Sub(l.start),
	}
	l.records = append(l.records, rec)

	level := slog.LevelInfo
	if placed < requested {
		level = slog.LevelWarn
	}
	slog.Log(context.Background(), level, "spawn entry done",
		"room", l.room,
		"asset", name,
		"method", method,
		"placed", placed,
		"requested", requested,
		"attempts", attempts,
		"cap", attemptCap,
		"elapsed", rec.Elapsed)
}

// Progress renders a text progress bar at debug level.
func (l *Logger) Progress(name string, current, total int) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	pct := 0.0
	if total > 0 {
		pct = float64(current) / float64(total)
	}
	filled := min(int(pct*progressWidth), progressWidth)
	bar := strings.Repeat("#", filled) + strings.Repeat("-", progressWidth-filled)
	slog.Debug(fmt.Sprintf("[%s] %3d%%", bar, int(pct*100)),
		"room", l.room,
		"entry", name)
}

// Records returns the records collected since the last Flush.
func (l *Logger) Records() []Record {
	return append([]Record(nil), l.records...)
}

// Flush merges collected records into the store and clears them.
func (l *Logger) Flush(ctx context.Context) error {
	if len(l.records) == 0 {
		return nil
	}
	recs := l.records
	l.records = nil
	if err := l.store.Apply(ctx, l.room, recs); err != nil {
		return fmt.Errorf("flushing %d spawn records for %s: %w", len(recs), l.room, err)
	}
	return nil
}
