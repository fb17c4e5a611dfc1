package spawnlog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const gdataObject = "spawn_stats"

// GdataStore keeps spawn statistics in the per-user application data
// directory, one property per room.
// A nil manager keeps rows in memory only.
type GdataStore struct {
	manager *gdata.Manager
	mu      sync.Mutex
	memory  map[string][]byte
}

// OpenGdataStore opens the data directory of appName. If the platform has
// no usable data directory the store degrades to memory.
func OpenGdataStore(appName string) (*GdataStore, error) {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("opening gdata for %s: %w", appName, err)
	}
	return NewGdataStore(m), nil
}

// NewGdataStore wraps an opened manager. m may be nil.
func NewGdataStore(m *gdata.Manager) *GdataStore {
	return &GdataStore{
		manager: m,
		memory:  make(map[string][]byte),
	}
}

// Apply merges recs into the stored rows of room.
func (s *GdataStore) Apply(_ context.Context, room string, recs []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.load(room)
	if err != nil {
		return err
	}

	byAsset := make(map[string]Row, len(rows))
	order := make([]string, 0, len(rows))
	for _, r := range rows {
		byAsset[r.Asset] = r
		order = append(order, r.Asset)
	}
	for _, rec := range recs {
		if _, ok := byAsset[rec.Asset]; !ok {
			order = append(order, rec.Asset)
		}
	}
	merged := MergeAll(byAsset, recs)

	out := make([]Row, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, a := range order {
		if !seen[a] {
			out = append(out, merged[a])
			seen[a] = true
		}
	}
	return s.save(room, out)
}

// Rows returns the stored rows of room.
func (s *GdataStore) Rows(_ context.Context, room string) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(room)
}

func (s *GdataStore) load(room string) ([]Row, error) {
	prop := propName(room)

	var data []byte
	if s.manager == nil {
		data = s.memory[prop]
	} else if s.manager.ObjectPropExists(gdataObject, prop) {
		var err error
		data, err = s.manager.LoadObjectProp(gdataObject, prop)
		if err != nil {
			return nil, fmt.Errorf("loading spawn stats for %s: %w", room, err)
		}
	}
	if len(data) == 0 {
		return nil, nil
	}

	var rows []Row
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding spawn stats for %s: %w", room, err)
	}
	return rows, nil
}

func (s *GdataStore) save(room string, rows []Row) error {
	data, err := yaml.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encoding spawn stats for %s: %w", room, err)
	}

	prop := propName(room)
	if s.manager == nil {
		s.memory[prop] = data
		return nil
	}
	if err := s.manager.SaveObjectProp(gdataObject, prop, data); err != nil {
		return fmt.Errorf("saving spawn stats for %s: %w", room, err)
	}
	return nil
}

// propName turns a room name into a file-safe property key.
func propName(room string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, room)
}
