package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/nba-props-engine/internal/config"
	"github.com/preston-bernstein/nba-props-engine/internal/store"
	"github.com/preston-bernstein/nba-props-engine/internal/store/sqlite"
)

// storeComponents pairs the shared store with the factory used for per-item sessions.
type storeComponents struct {
	store    store.Store
	sessions store.SessionFactory
	close    func() error
}

func buildStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (storeComponents, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(ctx, sqlite.Config{DSN: cfg.DSN, MaxOpenConns: cfg.MaxOpenConns})
		if err != nil {
			return storeComponents{}, err
		}
		if cfg.DatasetPath != "" {
			ds, err := store.ReadDataset(cfg.DatasetPath)
			if err == nil {
				err = db.Import(ctx, ds)
			}
			if err != nil {
				db.Close()
				return storeComponents{}, fmt.Errorf("import dataset: %w", err)
			}
			if logger != nil {
				logger.Info("dataset imported", slog.String("path", cfg.DatasetPath))
			}
		}
		return storeComponents{store: db, sessions: db, close: db.Close}, nil
	default:
		mem := store.NewMemoryStore()
		if cfg.DatasetPath != "" {
			loaded, err := store.LoadMemoryStore(cfg.DatasetPath)
			if err != nil {
				return storeComponents{}, fmt.Errorf("load dataset: %w", err)
			}
			mem = loaded
		}
		return storeComponents{store: mem, sessions: mem, close: func() error { return nil }}, nil
	}
}
