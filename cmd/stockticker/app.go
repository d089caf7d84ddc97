package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pkdone/stockticker/internal/store"
	"github.com/pkdone/stockticker/pkg/config"
	"github.com/pkdone/stockticker/pkg/models"
)

const connectTimeout = 5 * time.Second

// app bundles the dependencies every subcommand needs. The store gateway is
// constructed here and passed down; nothing holds a process-wide handle.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.RedisStore
	watch  *models.WatchList
}

// newApp loads config, builds the logger, and connects to the store.
// quiet swaps in a no-op logger for the display command, which owns the
// terminal.
func newApp(quiet bool) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := zap.NewNop()
	if !quiet {
		logger, err = config.NewLogger(cfg.Logger, cfg.App.Env)
		if err != nil {
			return nil, err
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store.NewRedisStore(rdb, cfg.Feed),
		watch:  models.DefaultWatchList(),
	}, nil
}

func (a *app) close() {
	a.store.Close()
	_ = a.logger.Sync()
}

// requireInitialized aborts commands that need a seeded dataset.
func (a *app) requireInitialized(ctx context.Context) error {
	ok, err := a.store.Initialized(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("dataset does not exist (run \"stockticker init\" first)")
	}
	return nil
}
