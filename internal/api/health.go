package api

import (
	"context"
	"net/http"
	"time"
)

// Pinger is any dependency that can answer a liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	storage    Pinger
	suppressor Pinger
	env        string
	version    string
}

// NewHealthHandler: storage is required for readiness, suppressor may be nil.
func NewHealthHandler(storage, suppressor Pinger, env, version string) *HealthHandler {
	return &HealthHandler{
		storage:    storage,
		suppressor: suppressor,
		env:        env,
		version:    version,
	}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string)
	status := "ok"

	if h.storage != nil {
		if ping(ctx, h.storage) != nil {
			deps["storage"] = "down"
			status = "error"
		} else {
			deps["storage"] = "ok"
		}
	}

	// a suppressor outage degrades, it never fails readiness
	if h.suppressor != nil {
		if ping(ctx, h.suppressor) != nil {
			deps["suppressor"] = "down"
			if status == "ok" {
				status = "degraded"
			}
		} else {
			deps["suppressor"] = "ok"
		}
	}

	httpStatus := http.StatusOK
	if status == "error" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	})
}

func ping(ctx context.Context, p Pinger) error {
	pctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return p.Ping(pctx)
}
