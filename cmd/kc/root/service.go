package root

import (
	"context"
	"log/slog"
	"os"

	"github.com/ccpk1/kidschores-ha-sub008/internal/config"
	"github.com/ccpk1/kidschores-ha-sub008/internal/engine"
	"github.com/ccpk1/kidschores-ha-sub008/internal/storage"
)

// app bundles everything a command needs.
type app struct {
	cfg   *config.Config
	svc   *engine.Service
	store *storage.Store
	log   *slog.Logger
}

func openApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	path := cfg.DBPath
	if path == "" {
		path, err = storage.DefaultDBPath()
		if err != nil {
			return nil, nil, err
		}
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = db.Close() }

	reg, err := storage.LoadRegistry(ctx, db)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	store := storage.NewStore(db)
	svc := engine.NewService(reg, store,
		engine.WithLogger(log),
		engine.WithLocation(loc),
		engine.WithRetention(engine.Retention{
			engine.PeriodDaily:   cfg.RetainDaily,
			engine.PeriodWeekly:  cfg.RetainWeekly,
			engine.PeriodMonthly: cfg.RetainMonthly,
			engine.PeriodYearly:  cfg.RetainYearly,
		}),
	)
	return &app{cfg: cfg, svc: svc, store: store, log: log}, cleanup, nil
}
