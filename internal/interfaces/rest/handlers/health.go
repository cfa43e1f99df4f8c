package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DanielPopoola/solpay-gateway/internal/api"
)

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := api.Health{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.Warn("health check failed", "dependency", name, "error", err)
			health.Checks[name] = "unavailable"
			health.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		health.Checks[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Envelope{Success: status == http.StatusOK, Data: health})
}
