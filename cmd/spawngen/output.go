package main

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/spawnforge/internal/world"
)

// placementFile is the YAML written for one room.
type placementFile struct {
	Room    string          `yaml:"room"`
	Seed    uint64          `yaml:"seed"`
	Count   int             `yaml:"count"`
	Objects []*world.Object `yaml:"objects"`
}

func writePlacement(path, roomName string, seed uint64, w *world.World) error {
	objs := w.Objects()
	data, err := yaml.Marshal(placementFile{
		Room:    roomName,
		Seed:    seed,
		Count:   len(objs),
		Objects: objs,
	})
	if err != nil {
		return fmt.Errorf("encoding placements of room %s: %w", roomName, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing placements %s: %w", path, err)
	}
	slog.Info("placements written",
		"room", roomName,
		"path", path,
		"objects", len(objs))
	return nil
}
