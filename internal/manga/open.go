package manga

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mangashelf/pkg/database"
	"mangashelf/pkg/utils"
)

// OpenStore builds the store selected by cfg, migrating SQL backends.
// The returned close function releases the underlying database, if any.
func OpenStore(ctx context.Context, cfg utils.StoreConfig, log *zap.Logger) (Store, func() error, error) {
	noop := func() error { return nil }

	var store Store
	closeFn := noop

	switch cfg.Backend {
	case "memory":
		store = NewMemoryStore()
		log.Info("using in-memory store")

	case "sqlite", "":
		db, err := database.Open(database.Config{Path: cfg.SQLitePath})
		if err != nil {
			return nil, noop, err
		}
		if err := database.Migrate(ctx, db, SQLite.Name); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("migrate sqlite: %w", err)
		}
		store, closeFn = NewSQLStore(db, SQLite), db.Close
		log.Info("using sqlite store", zap.String("path", cfg.SQLitePath))

	case "postgres":
		db, err := database.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		if err := database.Migrate(ctx, db, Postgres.Name); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("migrate postgres: %w", err)
		}
		store, closeFn = NewSQLStore(db, Postgres), db.Close
		log.Info("using postgres store")

	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	if cfg.Seed {
		n, err := Seed(ctx, store)
		if err != nil {
			_ = closeFn()
			return nil, noop, err
		}
		if n > 0 {
			log.Info("seeded sample collection", zap.Int("records", n))
		}
	}
	return store, closeFn, nil
}
