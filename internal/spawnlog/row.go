package spawnlog

import (
	"context"
	"time"
)

// Record is the outcome of one queue entry (or one batch member).
type Record struct {
	Room       string
	Asset      string
	Requested  int
	Placed     int
	Attempts   int
	AttemptCap int
	Method     string
	Elapsed    time.Duration
}

// Row is the persisted aggregate for (room, asset).
type Row struct {
	Room           string  `yaml:"room"`
	Asset          string  `yaml:"asset"`
	Ratio          float64 `yaml:"ratio"`
	Successes      int     `yaml:"successes"`
	Attempts       int     `yaml:"attempts"`
	Method         string  `yaml:"method"`
	AvgMS          float64 `yaml:"avg_ms"`
	TimesGenerated int     `yaml:"times_generated"`
	DeltaMS        float64 `yaml:"delta_ms"`
}

// Store persists rows. Apply merges a batch of records for one room in a
// single read and write of the backing storage.
type Store interface {
	Apply(ctx context.Context, room string, recs []Record) error
	Rows(ctx context.Context, room string) ([]Row, error)
}

// Merge folds rec into prev. With the same method successes and attempts
// are summed and the elapsed time joins a running average. A different
// method, or no previous row, starts the row over.
func Merge(prev *Row, rec Record) Row {
	ms := float64(rec.Elapsed.Microseconds()) / 1000

	if prev == nil || prev.Method != rec.Method {
		return Row{
			Room:           rec.Room,
			Asset:          rec.Asset,
			Ratio:          ratio(rec.Placed, rec.Attempts),
			Successes:      rec.Placed,
			Attempts:       rec.Attempts,
			Method:         rec.Method,
			AvgMS:          ms,
			TimesGenerated: 1,
		}
	}

	successes := prev.Successes + rec.Placed
	attempts := prev.Attempts + rec.Attempts
	n := prev.TimesGenerated
	return Row{
		Room:           rec.Room,
		Asset:          rec.Asset,
		Ratio:          ratio(successes, attempts),
		Successes:      successes,
		Attempts:       attempts,
		Method:         rec.Method,
		AvgMS:          (prev.AvgMS*float64(n) + ms) / float64(n+1),
		TimesGenerated: n + 1,
		DeltaMS:        ms - prev.AvgMS,
	}
}

// MergeAll applies recs in order on top of rows and returns the updated
// rows keyed by asset.
func MergeAll(rows map[string]Row, recs []Record) map[string]Row {
	if rows == nil {
		rows = make(map[string]Row)
	}
	for _, rec := range recs {
		var prev *Row
		if r, ok := rows[rec.Asset]; ok {
			prev = &r
		}
		rows[rec.Asset] = Merge(prev, rec)
	}
	return rows
}

func ratio(successes, attempts int) float64 {
	if attempts <= 0 {
		return 0
	}
	return float64(successes) / float64(attempts)
}

// NopStore discards everything.
type NopStore struct{}

func (NopStore) Apply(context.Context, string, []Record) error { return nil }

func (NopStore) Rows(context.Context, string) ([]Row, error) { return nil, nil }
