package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	Storage     string `json:"storage"`
}

// HealthHandler reports liveness and whether the database answers.
type HealthHandler struct {
	Env     string
	Version string
	// Ping checks the database. May be nil.
	Ping func(ctx context.Context) error
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	res := HealthStatus{
		Status:      "ok",
		Environment: h.Env,
		Version:     h.Version,
		Storage:     "ok",
	}

	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			res.Status = "degraded"
			res.Storage = "unavailable"
			writeJSON(w, r, http.StatusServiceUnavailable, res)
			return
		}
	}

	writeJSON(w, r, http.StatusOK, res)
}
