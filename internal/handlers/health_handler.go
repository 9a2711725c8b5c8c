package handlers

import (
	"context"
	"net/http"
	"time"

	"outswap/internal/models"
)

// HealthHandler reports liveness. When Ping is set a failing store turns
// the answer into 503.
type HealthHandler struct {
	Ping func(ctx context.Context) error
	Now  func() time.Time
	Responder
}

type healthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	status := healthStatus{Status: "OK", Timestamp: now().UTC()}

	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			if h.Log != nil {
				h.Log.WithError(err).Warn("health check failed")
			}
			status.Status = "UNAVAILABLE"
			writeJSON(w, http.StatusServiceUnavailable, models.APIResponse{Data: status, Error: "store unavailable"})
			return
		}
	}
	writeData(w, http.StatusOK, status)
}
