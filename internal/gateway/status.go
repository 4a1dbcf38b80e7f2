package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	UptimeSeconds int64            `json:"uptime_seconds"`
	Metrics       MetricsSnapshot  `json:"metrics"`
	Renders       map[string]int64 `json:"renders,omitempty"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			UptimeSeconds: int64(time.Since(g.startedAt).Seconds()),
			Metrics:       g.metrics.Snapshot(),
		}

		if g.store != nil {
			counts, err := g.store.CountByOutcome(r.Context())
			if err != nil {
				g.logger.Warn("status render counts unavailable", "error", err)
			} else {
				resp.Renders = counts
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
