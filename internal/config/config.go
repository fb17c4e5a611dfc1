package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Generator holds all configuration for the spawn generator.
type Generator struct {
	// Inputs
	Catalog  string   `yaml:"catalog"`
	Rooms    []string `yaml:"rooms"`
	RoomsDir string   `yaml:"rooms_dir"`

	// Output
	OutputDir string `yaml:"output_dir"`
	WriteBack bool   `yaml:"write_back"` // save migrated documents and generated spawn ids

	// Placement
	Seed           uint64 `yaml:"seed"`
	GridSpacing    int    `yaml:"grid_spacing"` // 0 disables the grid
	CenterBias     int    `yaml:"center_bias"`
	NeighborSample int    `yaml:"neighbor_sample"`
	SpacingAnchor  string `yaml:"spacing_anchor"` // center | bottom
	Workers        int    `yaml:"workers"`

	// Filters
	BannedTags   []string `yaml:"banned_tags"`
	BannedAssets []string `yaml:"banned_assets"`
	AllowedTags  []string `yaml:"allowed_tags"` // empty allows every tag

	LogLevel string `yaml:"log_level"`

	Stats Stats `yaml:"stats"`
}

// Stats selects where spawn statistics are persisted.
type Stats struct {
	Backend  string         `yaml:"backend"` // csv | postgres | gdata | none
	CSVPath  string         `yaml:"csv_path"`
	GdataApp string         `yaml:"gdata_app"`
	Database DatabaseConfig `yaml:"database"`
}

// Stats backends.
const (
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
	BackendGdata    = "gdata"
	BackendNone     = "none"
)

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultGenerator returns Generator config with sensible defaults.
func DefaultGenerator() Generator {
	return Generator{
		Catalog:        "data/assets.yaml",
		RoomsDir:       "data/rooms",
		OutputDir:      "out",
		GridSpacing:    100,
		CenterBias:     200,
		NeighborSample: 5,
		SpacingAnchor:  "center",
		Workers:        4,
		LogLevel:       "info",
		Stats: Stats{
			Backend:  BackendCSV,
			CSVPath:  "out/spawn_stats.csv",
			GdataApp: "spawnforge",
			Database: DatabaseConfig{
				Host:     "127.0.0.1",
				Port:     5432,
				User:     "spawnforge",
				Password: "spawnforge",
				DBName:   "spawnforge",
				SSLMode:  "disable",
			},
		},
	}
}

// SlogLevel maps LogLevel to a slog level. Unknown values give Info.
func (g Generator) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(g.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Validate checks values that have no sensible fallback.
func (g Generator) Validate() error {
	switch g.Stats.Backend {
	case BackendCSV, BackendPostgres, BackendGdata, BackendNone, "":
	default:
		return fmt.Errorf("unknown stats backend %q", g.Stats.Backend)
	}
	if g.Stats.Backend == BackendCSV && g.Stats.CSVPath == "" {
		return fmt.Errorf("stats backend csv needs csv_path")
	}
	if g.Catalog == "" {
		return fmt.Errorf("catalog path is empty")
	}
	if len(g.Rooms) == 0 && g.RoomsDir == "" {
		return fmt.Errorf("neither rooms nor rooms_dir is set")
	}
	return nil
}

// LoadGenerator loads generator config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadGenerator(path string) (Generator, error) {
	cfg := DefaultGenerator()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
