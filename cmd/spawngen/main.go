package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/spawnforge/internal/asset"
	"github.com/udisondev/spawnforge/internal/config"
	"github.com/udisondev/spawnforge/internal/geom"
	"github.com/udisondev/spawnforge/internal/planner"
	"github.com/udisondev/spawnforge/internal/room"
	"github.com/udisondev/spawnforge/internal/spawn"
	"github.com/udisondev/spawnforge/internal/world"
)

const ConfigPath = "config/spawnforge.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("spawngen", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file (default $SPAWNFORGE_CONFIG or "+ConfigPath+")")
	regen := fs.String("regenerate", "", "after the pass, regenerate the entry with this spawn id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *cfgPath
	if path == "" {
		path = ConfigPath
		if p := os.Getenv("SPAWNFORGE_CONFIG"); p != "" {
			path = p
		}
	}
	cfg, err := config.LoadGenerator(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config %s: %w", path, err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))
	slog.Info("spawnforge starting",
		"config", path,
		"seed", cfg.Seed,
		"workers", cfg.Workers,
		"stats", cfg.Stats.Backend)

	anchor, err := geom.ParseAnchor(cfg.SpacingAnchor)
	if err != nil {
		return fmt.Errorf("parsing spacing_anchor: %w", err)
	}

	catalog, err := asset.LoadCatalog(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	slog.Info("catalog loaded", "assets", catalog.Len())

	rooms, err := loadRooms(cfg)
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		slog.Warn("no rooms to spawn")
		return nil
	}
	slog.Info("rooms loaded", "count", len(rooms))

	stats, closeStats, err := openStats(ctx, cfg.Stats)
	if err != nil {
		return fmt.Errorf("opening stats backend: %w", err)
	}
	defer closeStats()

	popts := planner.Options{
		BannedTags:   cfg.BannedTags,
		BannedAssets: cfg.BannedAssets,
		AllowedTags:  cfg.AllowedTags,
	}
	queues := planner.NewRoomSource(catalog, popts)
	queues.WriteBack = cfg.WriteBack
	children := planner.NewChildResolver(catalog, filepath.Dir(cfg.Catalog), popts)

	mgr := spawn.NewManager(catalog, queues, children, stats, spawn.Options{
		Seed:           cfg.Seed,
		GridSpacing:    cfg.GridSpacing,
		CenterBias:     cfg.CenterBias,
		NeighborSample: cfg.NeighborSample,
		Anchor:         anchor,
		Workers:        cfg.Workers,
	})

	worlds, spawnErr := mgr.SpawnAll(ctx, rooms)
	if err := ctx.Err(); err != nil {
		return err
	}

	if *regen != "" {
		if err := regenerate(ctx, mgr, rooms, worlds, *regen); err != nil {
			return err
		}
	}

	if err := writeWorlds(ctx, cfg.OutputDir, cfg.Seed, rooms, worlds); err != nil {
		return err
	}

	if spawnErr != nil {
		return fmt.Errorf("some rooms failed: %w", spawnErr)
	}
	slog.Info("spawnforge finished", "rooms", len(worlds))
	return nil
}

func loadRooms(cfg config.Generator) ([]*room.Room, error) {
	var rooms []*room.Room
	for _, path := range cfg.Rooms {
		r, err := room.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading room: %w", err)
		}
		rooms = append(rooms, r)
	}

	if cfg.RoomsDir != "" {
		dirRooms, err := room.LoadDir(cfg.RoomsDir)
		if err != nil {
			if len(cfg.Rooms) > 0 && errors.Is(err, os.ErrNotExist) {
				return rooms, nil
			}
			return nil, fmt.Errorf("loading rooms: %w", err)
		}
		rooms = append(rooms, dirRooms...)
	}
	return rooms, nil
}

// regenerate re-rolls spawnID in every room whose queue carries it.
func regenerate(ctx context.Context, mgr *spawn.Manager, rooms []*room.Room, worlds map[string]*world.World, spawnID string) error {
	found := 0
	for _, r := range rooms {
		w, ok := worlds[r.Name]
		if !ok {
			continue
		}
		err := mgr.Regenerate(ctx, r, w, spawnID)
		if errors.Is(err, spawn.ErrUnknownSpawn) {
			continue
		}
		if err != nil {
			return fmt.Errorf("regenerating %s in room %s: %w", spawnID, r.Name, err)
		}
		found++
	}
	if found == 0 {
		return fmt.Errorf("regenerating %s: %w", spawnID, spawn.ErrUnknownSpawn)
	}
	return nil
}

// writeWorlds writes one placement file per room in parallel.
func writeWorlds(ctx context.Context, dir string, seed uint64, rooms []*room.Room, worlds map[string]*world.World) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %s: %w", dir, err)
	}

	g, _ := errgroup.WithContext(ctx)
	for _, r := range rooms {
		w, ok := worlds[r.Name]
		if !ok {
			continue
		}
		g.Go(func() error {
			return writePlacement(filepath.Join(dir, r.Name+".yaml"), r.Name, seed, w)
		})
	}
	return g.Wait()
}
