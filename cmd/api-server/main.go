package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hackgods/medication-reminder/internal/api"
	"github.com/hackgods/medication-reminder/internal/auth"
	"github.com/hackgods/medication-reminder/internal/bootstrap"
	"github.com/hackgods/medication-reminder/internal/config"
	"github.com/hackgods/medication-reminder/internal/logger"
	"github.com/hackgods/medication-reminder/internal/metrics"
	"github.com/hackgods/medication-reminder/internal/notify"
	"github.com/hackgods/medication-reminder/internal/reminder"
	"github.com/hackgods/medication-reminder/internal/settings"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("config load error")
	}
	logger.Init(cfg.Env, cfg.LogLevel)

	logger.Logger.Info().
		Str("http_port", cfg.HTTPPort).
		Str("driver", cfg.StorageDriver).
		Str("suppressor", cfg.Suppressor).
		Bool("scheduler", cfg.SchedulerEnabled).
		Msg("api-server starting up")

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
	var supPinger api.Pinger
	if p, ok := sup.(api.Pinger); ok {
		supPinger = p
	}

	hub := notify.NewHub()
	sink := notify.Fanout{
		notify.NewLogSink(logger.Logger.With().Str("component", "notifications").Logger()),
		hub,
	}

	rec := metrics.New()
	sched := reminder.NewScheduler(store, sink, bootstrap.SchedulerOptions(cfg, sup, rec))

	router := api.NewRouter(api.RouterConfig{
		Store:      store,
		Sink:       sink,
		Hub:        hub,
		Auth:       auth.NewProvider(kv, cfg.AuthLatency),
		Tokens:     auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL),
		Settings:   settings.NewService(kv),
		Metrics:    rec.Handler(),
		Storage:    kv,
		Suppressor: supPinger,
		Env:        cfg.Env,
		Version:    version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	schedDone := make(chan struct{})
	if cfg.SchedulerEnabled {
		go func() {
			defer close(schedDone)
			sched.Run(rootCtx)
		}()
	} else {
		logger.Logger.Info().Msg("scheduler disabled, reminder-worker owns notifications")
		close(schedDone)
	}

	go func() {
		logger.Logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Logger.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("http shutdown error")
	}
	<-schedDone

	logger.Logger.Info().Msg("api-server stopped")
}
