package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/udisondev/spawnforge/internal/config"
	"github.com/udisondev/spawnforge/internal/db"
	"github.com/udisondev/spawnforge/internal/spawnlog"
)

// openStats builds the configured statistics store. The returned func
// releases it.
func openStats(ctx context.Context, cfg config.Stats) (spawnlog.Store, func(), error) {
	nop := func() {}

	switch cfg.Backend {
	case config.BackendCSV:
		slog.Info("spawn stats go to csv", "path", cfg.CSVPath)
		return spawnlog.NewCSVStore(cfg.CSVPath), nop, nil

	case config.BackendGdata:
		store, err := spawnlog.OpenGdataStore(cfg.GdataApp)
		if err != nil {
			return nil, nop, err
		}
		slog.Info("spawn stats go to app data", "app", cfg.GdataApp)
		return store, nop, nil

	case config.BackendPostgres:
		database, err := db.Open(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nop, err
		}
		slog.Info("spawn stats go to postgres", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)
		return database.Stats(), database.Close, nil

	case config.BackendNone, "":
		return spawnlog.NopStore{}, nop, nil

	default:
		return nil, nop, fmt.Errorf("unknown stats backend %q", cfg.Backend)
	}
}
