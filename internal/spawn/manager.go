package spawn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/spawnforge/internal/asset"
	"github.com/udisondev/spawnforge/internal/geom"
	"github.com/udisondev/spawnforge/internal/grid"
	"github.com/udisondev/spawnforge/internal/room"
	"github.com/udisondev/spawnforge/internal/spawnlog"
	"github.com/udisondev/spawnforge/internal/world"
)

// ErrUnknownSpawn is returned by Regenerate when no queue entry carries
// the requested spawn id.
var ErrUnknownSpawn = errors.New("no entry with this spawn id")

// QueueSource builds the ordered placement queue of a room.
type QueueSource interface {
	RoomQueue(r *room.Room, rng *rand.Rand) ([]*Info, error)
}

// Options tunes a Manager.
type Options struct {
	Seed           uint64
	GridSpacing    int // 0 disables the grid
	CenterBias     int
	NeighborSample int
	Anchor         geom.Anchor
	Workers        int
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		GridSpacing:    100,
		CenterBias:     DefaultCenterBias,
		NeighborSample: 5,
		Anchor:         geom.AnchorCenter,
		Workers:        4,
	}
}

// Manager runs spawn passes for rooms and regenerates single entries.
type Manager struct {
	catalog  *asset.Catalog
	queues   QueueSource
	children ChildPlanner
	stats    spawnlog.Store
	checker  *Checker
	opts     Options

	mu          sync.Mutex
	generations map[string]int
}

// NewManager creates new spawn manager. children and stats may be nil.
func NewManager(
	catalog *asset.Catalog,
	queues QueueSource,
	children ChildPlanner,
	stats spawnlog.Store,
	opts Options,
) *Manager {
	return &Manager{
		catalog:     catalog,
		queues:      queues,
		children:    children,
		stats:       stats,
		checker:     NewChecker(opts.Anchor),
		opts:        opts,
		generations: make(map[string]int),
	}
}

func (m *Manager) newContext(rng *rand.Rand, log Recorder, r *room.Room, w *world.World, g *grid.Grid) *Context {
	return &Context{
		Rng:            rng,
		Checker:        m.checker,
		Log:            log,
		Exclusions:     r.Exclusions,
		Catalog:        m.catalog,
		World:          w,
		Grid:           g,
		Children:       m.children,
		CenterBias:     m.opts.CenterBias,
		NeighborSample: m.opts.NeighborSample,
	}
}

func (m *Manager) newGrid(r *room.Room) *grid.Grid {
	if m.opts.GridSpacing <= 0 {
		return nil
	}
	return grid.FromAreaBounds(r.Area, m.opts.GridSpacing)
}

// SpawnRoom runs one full pass over the room's queue and returns the
// placed objects. Under-placement is not an error.
func (m *Manager) SpawnRoom(ctx context.Context, r *room.Room) (*world.World, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := NewRand(m.opts.Seed, r.Name)
	queue, err := m.queues.RoomQueue(r, rng)
	if err != nil {
		return nil, fmt.Errorf("planning room %s: %w", r.Name, err)
	}

	w := world.New()
	log := spawnlog.New(r.Name, m.stats)
	NewSpawner(m.newContext(rng, log, r, w, m.newGrid(r))).Run(queue, r.Area)
	m.flush(ctx, log)

	slog.Info("room spawned",
		"room", r.Name,
		"entries", len(queue),
		"objects", w.Len())

	return w, nil
}

// Regenerate destroys the objects of spawnID (children included) and runs
// the matching queue entries again against the remaining objects.
func (m *Manager) Regenerate(ctx context.Context, r *room.Room, w *world.World, spawnID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	key := r.Name + "/" + spawnID
	m.generations[key]++
	gen := m.generations[key]
	m.mu.Unlock()

	rng := NewRand(m.opts.Seed, r.Name, spawnID, strconv.Itoa(gen))
	queue, err := m.queues.RoomQueue(r, rng)
	if err != nil {
		return fmt.Errorf("planning room %s: %w", r.Name, err)
	}

	var matching []*Info
	for _, info := range queue {
		if info.SpawnID == spawnID {
			matching = append(matching, info)
		}
	}
	if len(matching) == 0 {
		return fmt.Errorf("regenerating %s in room %s: %w", spawnID, r.Name, ErrUnknownSpawn)
	}

	removed := w.RemoveSpawn(spawnID)

	// Children never take grid cells during a pass, so seeding from the
	// roots rebuilds the occupancy the pass left behind.
	g := m.newGrid(r)
	if g != nil {
		g.Seed(w.Positions())
	}

	log := spawnlog.New(r.Name, m.stats)
	NewSpawner(m.newContext(rng, log, r, w, g)).Run(matching, r.Area)
	m.flush(ctx, log)

	slog.Info("spawn regenerated",
		"room", r.Name,
		"spawnID", spawnID,
		"removed", removed,
		"placed", len(w.BySpawnID(spawnID)))

	return nil
}

// SpawnAll spawns every room, at most Options.Workers at a time. A failing
// room is logged and skipped; the first such error is returned after all
// rooms finished.
func (m *Manager) SpawnAll(ctx context.Context, rooms []*room.Room) (map[string]*world.World, error) {
	var (
		mu       sync.Mutex
		out      = make(map[string]*world.World, len(rooms))
		firstErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(m.opts.Workers, 1))

	for _, r := range rooms {
		g.Go(func() error {
			w, err := m.SpawnRoom(gctx, r)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				slog.Error("failed to spawn room",
					"room", r.Name,
					"error", err)
				return nil // continue with next room
			}
			out[r.Name] = w
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return out, fmt.Errorf("spawning rooms: %w", err)
	}
	return out, firstErr
}

func (m *Manager) flush(ctx context.Context, log *spawnlog.Logger) {
	if err := log.Flush(ctx); err != nil {
		slog.Warn("saving spawn stats", "error", err)
	}
}
