package room

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/spawnforge/internal/geom"
)

// Room is a loaded room definition. The room file itself is also the first
// planner document; Sources lists further documents.
type Room struct {
	Name       string
	Path       string
	Area       *geom.Area
	Exclusions []*geom.Area
	Sources    []string
}

// Documents returns the room file followed by its extra sources.
func (r *Room) Documents() []string {
	return append([]string{r.Path}, r.Sources...)
}

type roomFile struct {
	Name           string     `yaml:"name"`
	Area           [][2]int   `yaml:"area"`
	ExclusionZones [][][2]int `yaml:"exclusion_zones"`
	Sources        []string   `yaml:"sources"`
}

// Load reads a room file. A missing or unparsable file and an area with
// fewer than 3 points are errors; bad exclusion zones are dropped.
func Load(path string) (*Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading room %s: %w", path, err)
	}

	var f roomFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing room %s: %w", path, err)
	}

	name := f.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	area, err := geom.NewArea(name, points(f.Area))
	if err != nil {
		return nil, fmt.Errorf("room %s area: %w", name, err)
	}
	if area.Kind() != geom.KindPolygon {
		return nil, fmt.Errorf("room %s area: %w", name, geom.ErrTooFewPoints)
	}

	r := &Room{
		Name: name,
		Path: path,
		Area: area,
	}

	for i, raw := range f.ExclusionZones {
		zone, err := geom.NewArea(fmt.Sprintf("%s/exclusion/%d", name, i), points(raw))
		if err != nil {
			slog.Warn("dropping exclusion zone",
				"room", name,
				"index", i,
				"error", err)
			continue
		}
		r.Exclusions = append(r.Exclusions, zone)
	}

	dir := filepath.Dir(path)
	for _, src := range f.Sources {
		if !filepath.IsAbs(src) {
			src = filepath.Join(dir, src)
		}
		r.Sources = append(r.Sources, src)
	}

	return r, nil
}

// LoadDir loads every *.yaml, *.yml and *.json room file in dir, sorted by
// file name.
func LoadDir(dir string) ([]*Room, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading rooms dir %s: %w", dir, err)
	}

	var rooms []*Room
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		r, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, nil
}

func points(raw [][2]int) []geom.Point {
	pts := make([]geom.Point, len(raw))
	for i, p := range raw {
		pts[i] = geom.Point{X: p[0], Y: p[1]}
	}
	return pts
}
