package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/hackgods/medication-reminder/internal/bootstrap"
	"github.com/hackgods/medication-reminder/internal/config"
	"github.com/hackgods/medication-reminder/internal/logger"
	"github.com/hackgods/medication-reminder/internal/notify"
	"github.com/hackgods/medication-reminder/internal/reminder"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("config load error")
	}
	logger.Init(cfg.Env, cfg.LogLevel)

	logger.Logger.Info().
		Str("driver", cfg.StorageDriver).
		Dur("interval", cfg.TickInterval).
		Msg("reminder-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, store, err := bootstrap.OpenStore(rootCtx, cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("storage error")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("error closing store")
		}
	}()

	sup, closeSup, err := bootstrap.Suppressor(rootCtx, cfg)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("suppressor error")
	}
	defer func() {
		if err := closeSup(); err != nil {
			logger.Logger.Error().Err(err).Msg("error closing suppressor")
		}
	}()

	sink := notify.NewLogSink(logger.Logger.With().Str("component", "notifications").Logger())
	sched := reminder.NewScheduler(store, sink, bootstrap.SchedulerOptions(cfg, sup, nil))

	sched.Run(rootCtx)

	logger.Logger.Info().Msg("reminder-worker stopped")
}
