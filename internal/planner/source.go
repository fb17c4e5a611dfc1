package planner

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"

	"github.com/udisondev/spawnforge/internal/asset"
	"github.com/udisondev/spawnforge/internal/geom"
	"github.com/udisondev/spawnforge/internal/room"
	"github.com/udisondev/spawnforge/internal/spawn"
)

// RoomSource plans room queues from the room file and its extra sources.
// It is safe for concurrent use; every call loads fresh documents.
type RoomSource struct {
	catalog *asset.Catalog
	opts    Options
	// WriteBack saves migrated documents and generated spawn ids.
	WriteBack bool
}

// NewRoomSource creates a room queue source.
func NewRoomSource(catalog *asset.Catalog, opts Options) *RoomSource {
	return &RoomSource{catalog: catalog, opts: opts}
}

// RoomQueue loads r's documents and returns the planned queue.
func (s *RoomSource) RoomQueue(r *room.Room, rng *rand.Rand) ([]*spawn.Info, error) {
	paths := r.Documents()
	docs := make([]*Document, 0, len(paths))
	for _, path := range paths {
		d, err := LoadDocument(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}

	p := New(docs, s.catalog, r.Area, rng, s.opts)
	if s.WriteBack {
		if err := p.Save(); err != nil {
			return nil, fmt.Errorf("saving room %s documents: %w", r.Name, err)
		}
	}
	return p.Queue(), nil
}

// ChildResolver plans the content of child regions. Inline entries are
// copied before planning and file documents are parsed per call, so
// concurrent rooms never share a tree.
type ChildResolver struct {
	catalog *asset.Catalog
	opts    Options
	baseDir string

	mu    sync.Mutex
	files map[string]childFile
}

type childFile struct {
	data []byte
	err  error
}

// NewChildResolver creates a resolver. Relative json_path values are read
// from baseDir.
func NewChildResolver(catalog *asset.Catalog, baseDir string, opts Options) *ChildResolver {
	return &ChildResolver{
		catalog: catalog,
		opts:    opts,
		baseDir: baseDir,
		files:   make(map[string]childFile),
	}
}

// PlanChild returns the queue for one child region placed at area.
func (c *ChildResolver) PlanChild(region asset.ChildRegion, area *geom.Area, rng *rand.Rand) ([]*spawn.Info, error) {
	var doc *Document
	switch {
	case region.HasInline():
		doc = NewInlineDocument("inline:"+region.Area, cloneNode(region.Inline))
	case region.JSONPath != "":
		d, err := c.document(region.JSONPath)
		if err != nil {
			return nil, err
		}
		doc = d
	default:
		return nil, nil
	}

	return New([]*Document{doc}, c.catalog, area, rng, c.opts).Queue(), nil
}

func (c *ChildResolver) document(path string) (*Document, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.baseDir, path)
	}

	c.mu.Lock()
	f, ok := c.files[path]
	if !ok {
		f.data, f.err = os.ReadFile(path)
		if f.err != nil {
			slog.Warn("child document unavailable",
				"path", path,
				"error", f.err)
			f.err = fmt.Errorf("reading child document %s: %w", path, f.err)
		}
		c.files[path] = f
	}
	c.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return ParseDocument(path, f.data)
}
