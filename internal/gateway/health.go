package gateway

import (
	"encoding/json"
	"net/http"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"` // "ok" or "degraded"
	Assets  string `json:"assets,omitempty"`
	Store   string `json:"store,omitempty"`
	Channel string `json:"channel,omitempty"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 when every resolved dependency is healthy, 503 otherwise.
// Missing services are skipped: the gateway stays up even when the render
// or stats modules are not loaded.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status: "ok",
		}

		if g.assets != nil {
			if err := g.assets.Verify(); err != nil {
				resp.Assets = err.Error()
				resp.Status = "degraded"
			} else {
				resp.Assets = "ok"
			}
		}

		if g.store != nil {
			if err := g.store.Ping(r.Context()); err != nil {
				resp.Store = err.Error()
				resp.Status = "degraded"
			} else {
				resp.Store = "ok"
			}
		}

		// A channel that is still connecting does not degrade health; polling
		// recovers on its own and webhooks arrive independently.
		if g.channel != nil {
			if g.channel.Ready() {
				resp.Channel = "connected"
			} else {
				resp.Channel = "connecting"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
