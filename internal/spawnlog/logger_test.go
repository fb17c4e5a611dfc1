package spawnlog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	first := Merge(nil, Record{
		Room: "r", Asset: "rock", Placed: 3, Attempts: 6,
		Method: "random", Elapsed: 10 * time.Millisecond,
	})
	assert.Equal(t, Row{
		Room: "r", Asset: "rock", Ratio: 0.5, Successes: 3, Attempts: 6,
		Method: "random", AvgMS: 10, TimesGenerated: 1,
	}, first)

	t.Run("same method sums", func(t *testing.T) {
		got := Merge(&first, Record{
			Room: "r", Asset: "rock", Placed: 1, Attempts: 2,
			Method: "random", Elapsed: 20 * time.Millisecond,
		})
		assert.Equal(t, 4, got.Successes)
		assert.Equal(t, 8, got.Attempts)
		assert.InDelta(t, 0.5, got.Ratio, 1e-9)
		assert.InDelta(t, 15, got.AvgMS, 1e-9)
		assert.Equal(t, 2, got.TimesGenerated)
		assert.InDelta(t, 10, got.DeltaMS, 1e-9)
	})

	t.Run("method change resets", func(t *testing.T) {
		got := Merge(&first, Record{
			Room: "r", Asset: "rock", Placed: 1, Attempts: 1,
			Method: "percent", Elapsed: 5 * time.Millisecond,
		})
		assert.Equal(t, 1, got.Successes)
		assert.Equal(t, 1, got.Attempts)
		assert.Equal(t, 1, got.TimesGenerated)
		assert.Zero(t, got.DeltaMS)
		assert.Equal(t, "percent", got.Method)
	})

	t.Run("zero attempts", func(t *testing.T) {
		got := Merge(nil, Record{Asset: "x", Method: "exact"})
		assert.Zero(t, got.Ratio)
	})
}

// memStore для тестов
type memStore struct {
	applied [][]Record
	err     error
}

func (s *memStore) Apply(_ context.Context, _ string, recs []Record) error {
	if s.err != nil {
		return s.err
	}
	s.applied = append(s.applied, recs)
	return nil
}

func (s *memStore) Rows(context.Context, string) ([]Row, error) { return nil, nil }

func TestLogger_Flush(t *testing.T) {
	store := &memStore{}
	l := New("cave", store)

	clock := time.Unix(0, 0)
	l.now = func() time.Time { return clock }

	l.StartTimer()
	clock = clock.Add(7 * time.Millisecond)
	l.OutputAndLog("rock", 5, 4, 12, 50, "random")
	l.Progress("rock", 1, 2)
	l.StartTimer()
	l.OutputAndLog("tree", 1, 1, 1, 1, "center")

	recs := l.Records()
	require.Len(t, recs, 2)
	assert.Equal(t, 7*time.Millisecond, recs[0].Elapsed)
	assert.Equal(t, "cave", recs[0].Room)
	assert.Zero(t, recs[1].Elapsed)

	require.NoError(t, l.Flush(context.Background()))
	require.Len(t, store.applied, 1)
	assert.Len(t, store.applied[0], 2)
	assert.Empty(t, l.Records())

	// nothing to flush
	require.NoError(t, l.Flush(context.Background()))
	assert.Len(t, store.applied, 1)

	store.err = errors.New("disk full")
	l.OutputAndLog("rock", 1, 0, 10, 10, "random")
	assert.ErrorContains(t, l.Flush(context.Background()), "disk full")
}

func TestCSVStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "logs", "spawn_log.csv")
	s := NewCSVStore(path)

	rows, err := s.Rows(ctx, "cave")
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, s.Apply(ctx, "cave", []Record{
		{Room: "cave", Asset: "rock", Placed: 2, Attempts: 4, Method: "random", Elapsed: time.Millisecond},
		{Room: "cave", Asset: "tree", Placed: 1, Attempts: 1, Method: "center"},
	}))
	require.NoError(t, s.Apply(ctx, "forest", []Record{
		{Room: "forest", Asset: "rock", Placed: 1, Attempts: 1, Method: "random"},
	}))
	require.NoError(t, s.Apply(ctx, "cave", []Record{
		{Room: "cave", Asset: "rock", Placed: 2, Attempts: 4, Method: "random", Elapsed: 3 * time.Millisecond},
	}))

	rows, err = s.Rows(ctx, "cave")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "rock", rows[0].Asset)
	assert.Equal(t, 4, rows[0].Successes)
	assert.Equal(t, 8, rows[0].Attempts)
	assert.Equal(t, 2, rows[0].TimesGenerated)
	assert.InDelta(t, 2, rows[0].AvgMS, 1e-9)
	assert.Equal(t, "tree", rows[1].Asset)

	forest, err := s.Rows(ctx, "forest")
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, 1, forest[0].Successes)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "room,asset,ratio,successes,attempts,method,avg_ms,times_generated,delta_ms\n")
	assert.Contains(t, string(data), "cave,rock,0.500,4,8,random,2.000,2,2.000\n")
}

func TestCSVStore_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spawn_log.csv")
	require.NoError(t, os.WriteFile(path, []byte("cave,rock,x,1,1,random,0,1,0\n"), 0o644))

	_, err := NewCSVStore(path).Rows(context.Background(), "cave")
	assert.ErrorContains(t, err, "ratio")
}

func TestGdataStore_Memory(t *testing.T) {
	ctx := context.Background()
	s := NewGdataStore(nil)

	require.NoError(t, s.Apply(ctx, "cave/level 1", []Record{
		{Room: "cave/level 1", Asset: "rock", Placed: 1, Attempts: 2, Method: "random"},
	}))
	require.NoError(t, s.Apply(ctx, "cave/level 1", []Record{
		{Room: "cave/level 1", Asset: "rock", Placed: 1, Attempts: 2, Method: "random"},
		{Room: "cave/level 1", Asset: "bush", Placed: 0, Attempts: 3, Method: "percent"},
	}))

	rows, err := s.Rows(ctx, "cave/level 1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "rock", rows[0].Asset)
	assert.Equal(t, 2, rows[0].Successes)
	assert.Equal(t, "bush", rows[1].Asset)

	assert.Equal(t, "cave_level_1", propName("cave/level 1"))
}

func TestGdataStore_Disk(t *testing.T) {
	appName := fmt.Sprintf("spawnforge_test_%d", time.Now().UnixNano())
	s, err := OpenGdataStore(appName)
	if err != nil {
		t.Skipf("gdata unavailable: %v", err)
	}
	t.Cleanup(func() {
		if home, err := os.UserHomeDir(); err == nil {
			os.RemoveAll(filepath.Join(home, ".local", "share", appName))
		}
	})

	ctx := context.Background()
	require.NoError(t, s.Apply(ctx, "cave", []Record{
		{Room: "cave", Asset: "rock", Placed: 1, Attempts: 1, Method: "exact"},
	}))

	reopened, err := OpenGdataStore(appName)
	require.NoError(t, err)
	rows, err := reopened.Rows(ctx, "cave")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "exact", rows[0].Method)
}
