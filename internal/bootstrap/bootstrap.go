// Package bootstrap wires config into the long lived pieces shared by the
// executables.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/hackgods/medication-reminder/internal/config"
	"github.com/hackgods/medication-reminder/internal/kvstore"
	"github.com/hackgods/medication-reminder/internal/logger"
	redisclient "github.com/hackgods/medication-reminder/internal/redis"
	"github.com/hackgods/medication-reminder/internal/reminder"
)

const suppressorPrefix = "medrem:"

// OpenStore opens the durable store and loads the reminder collections from it.
func OpenStore(ctx context.Context, cfg config.Config) (kvstore.Store, *reminder.Store, error) {
	kv, err := kvstore.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.StorageDriver, err)
	}

	store := reminder.NewStore(kv, reminder.WithRestockUnits(cfg.RestockUnits))
	if err := store.Load(ctx); err != nil {
		_ = kv.Close()
		return nil, nil, fmt.Errorf("load store: %w", err)
	}

	logger.Logger.Info().Str("driver", cfg.StorageDriver).Msg("store opened")
	return kv, store, nil
}

// Suppressor returns the low inventory suppressor selected by cfg and a
// function releasing its resources.
func Suppressor(ctx context.Context, cfg config.Config) (reminder.Suppressor, func() error, error) {
	if cfg.Suppressor != "redis" {
		return reminder.NewExpiringSet(), func() error { return nil }, nil
	}

	rdb, err := redisclient.NewRedisClient(ctx, kvstore.RedisOptions(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis suppressor: %w", err)
	}

	logger.Logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis suppressor")
	return redisclient.NewSuppressor(rdb, suppressorPrefix), rdb.Close, nil
}

func SchedulerOptions(cfg config.Config, sup reminder.Suppressor, rec reminder.Recorder) reminder.SchedulerOptions {
	return reminder.SchedulerOptions{
		Interval:    cfg.TickInterval,
		LeadWindow:  cfg.AppointmentLead,
		SuppressTTL: cfg.LowStockSuppressTTL,
		Suppressor:  sup,
		Recorder:    rec,
	}
}
