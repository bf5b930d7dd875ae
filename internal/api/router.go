package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hackgods/medication-reminder/internal/auth"
	"github.com/hackgods/medication-reminder/internal/notify"
	"github.com/hackgods/medication-reminder/internal/reminder"
	"github.com/hackgods/medication-reminder/internal/settings"
)

type RouterConfig struct {
	Store    *reminder.Store
	Sink     notify.Sink // receives "medicine taken" confirmations
	Hub      *notify.Hub // optional, serves /ws
	Auth     *auth.Provider
	Tokens   *auth.TokenManager
	Settings *settings.Service
	Metrics  http.Handler // optional, serves /metrics

	Storage    Pinger
	Suppressor Pinger

	Clock   func() time.Time
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)

	health := NewHealthHandler(cfg.Storage, cfg.Suppressor, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Post("/auth/signup", signupHandler(cfg.Auth, cfg.Tokens))
	r.Post("/auth/login", loginHandler(cfg.Auth, cfg.Tokens))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Tokens, cfg.Auth))

		r.Post("/auth/logout", logoutHandler(cfg.Auth))
		r.Get("/auth/me", meHandler)

		r.Get("/theme", getThemeHandler(cfg.Settings))
		r.Put("/theme", setThemeHandler(cfg.Settings))

		r.Route("/medicines", func(r chi.Router) {
			r.Get("/", listMedicinesHandler(cfg.Store, now))
			r.Post("/", createMedicineHandler(cfg.Store))
			r.Get("/low", lowInventoryHandler(cfg.Store))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", getMedicineHandler(cfg.Store))
				r.Patch("/", updateMedicineHandler(cfg.Store))
				r.Delete("/", deleteMedicineHandler(cfg.Store))
				r.Post("/take", takeMedicineHandler(cfg.Store, cfg.Sink, now))
				r.Put("/inventory", updateInventoryHandler(cfg.Store))
				r.Post("/restock", restockMedicineHandler(cfg.Store))
			})
		})

		r.Get("/progress", progressHandler(cfg.Store, now))

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", listAppointmentsHandler(cfg.Store, now))
			r.Post("/", createAppointmentHandler(cfg.Store))
			r.Get("/{id}", getAppointmentHandler(cfg.Store))
			r.Patch("/{id}", updateAppointmentHandler(cfg.Store))
			r.Delete("/{id}", deleteAppointmentHandler(cfg.Store))
		})

		if cfg.Hub != nil {
			r.Get("/ws", cfg.Hub.ServeWS)
		}
	})

	return r
}
