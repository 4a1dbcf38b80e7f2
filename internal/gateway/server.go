package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public, no auth required.
	r.Get("/health", g.handleHealth())

	// Prometheus metrics from the default registry, where the render
	// pipeline publishes its counters and histograms.
	r.Handle("/metrics", promhttp.Handler())

	// Webhooks carry their own per-source authentication.
	r.Post("/webhooks/{source}", g.dispatcher.ServeHTTP)

	// Status requires auth. Not mounted if no auth is configured.
	if g.config.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth, g.audit, g.limiter))
			r.Get("/status", g.handleStatus())
		})
	}

	return r
}
