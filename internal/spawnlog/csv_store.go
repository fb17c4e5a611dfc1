package spawnlog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

var csvHeader = []string{
	"room", "asset", "ratio", "successes", "attempts",
	"method", "avg_ms", "times_generated", "delta_ms",
}

// CSVStore keeps spawn statistics of all rooms in one CSV file.
// Safe for concurrent use by several room passes.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore creates a store backed by path. The file is created on the
// first Apply.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Apply merges recs into the rows of room and rewrites the file.
func (s *CSVStore) Apply(_ context.Context, room string, recs []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.read()
	if err != nil {
		return err
	}

	current := make(map[string]Row)
	for _, r := range rows {
		if r.Room == room {
			current[r.Asset] = r
		}
	}
	merged := MergeAll(current, recs)

	out := rows[:0]
	seen := make(map[string]bool)
	for _, r := range rows {
		if r.Room != room {
			out = append(out, r)
			continue
		}
		out = append(out, merged[r.Asset])
		seen[r.Asset] = true
	}
	for _, rec := range recs {
		if !seen[rec.Asset] {
			out = append(out, merged[rec.Asset])
			seen[rec.Asset] = true
		}
	}

	return s.write(out)
}

// Rows returns the rows of room in file order.
func (s *CSVStore) Rows(_ context.Context, room string) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.read()
	if err != nil {
		return nil, err
	}
	var out []Row
	for _, r := range rows {
		if r.Room == room {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *CSVStore) read() ([]Row, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading spawn stats %s: %w", s.path, err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing spawn stats %s: %w", s.path, err)
	}

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == csvHeader[0] {
			continue
		}
		row, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("parsing spawn stats %s line %d: %w", s.path, i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *CSVStore) write(rows []Row) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("encoding spawn stats header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(formatRow(r)); err != nil {
			return fmt.Errorf("encoding spawn stats row %s/%s: %w", r.Room, r.Asset, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encoding spawn stats: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating spawn stats dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing spawn stats %s: %w", s.path, err)
	}
	return nil
}

func formatRow(r Row) []string {
	return []string{
		r.Room,
		r.Asset,
		strconv.FormatFloat(r.Ratio, 'f', 3, 64),
		strconv.Itoa(r.Successes),
		strconv.Itoa(r.Attempts),
		r.Method,
		strconv.FormatFloat(r.AvgMS, 'f', 3, 64),
		strconv.Itoa(r.TimesGenerated),
		strconv.FormatFloat(r.DeltaMS, 'f', 3, 64),
	}
}

func parseRow(rec []string) (Row, error) {
	if len(rec) != len(csvHeader) {
		return Row{}, fmt.Errorf("want %d columns, got %d", len(csvHeader), len(rec))
	}

	var (
		r   Row
		err error
	)
	r.Room = rec[0]
	r.Asset = rec[1]
	r.Method = rec[5]
	if r.Ratio, err = strconv.ParseFloat(rec[2], 64); err != nil {
		return Row{}, fmt.Errorf("ratio: %w", err)
	}
	if r.Successes, err = strconv.Atoi(rec[3]); err != nil {
		return Row{}, fmt.Errorf("successes: %w", err)
	}
	if r.Attempts, err = strconv.Atoi(rec[4]); err != nil {
		return Row{}, fmt.Errorf("attempts: %w", err)
	}
	if r.AvgMS, err = strconv.ParseFloat(rec[6], 64); err != nil {
		return Row{}, fmt.Errorf("avg_ms: %w", err)
	}
	if r.TimesGenerated, err = strconv.Atoi(rec[7]); err != nil {
		return Row{}, fmt.Errorf("times_generated: %w", err)
	}
	if r.DeltaMS, err = strconv.ParseFloat(rec[8], 64); err != nil {
		return Row{}, fmt.Errorf("delta_ms: %w", err)
	}
	return r, nil
}
