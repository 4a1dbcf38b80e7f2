package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/xinyong-bot/xinyong/internal/security"
)

// WebhookHandler processes a validated webhook payload.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, source string, body []byte, headers http.Header) error
}

type webhookEntry struct {
	handler WebhookHandler
	secret  string
}

// WebhookDispatcher routes incoming webhooks to registered handlers with
// payload validation and optional HMAC signature checks.
type WebhookDispatcher struct {
	mu       sync.RWMutex
	handlers map[string]webhookEntry
	logger   *slog.Logger
	metrics  *Metrics
}

// NewWebhookDispatcher creates a ready-to-use dispatcher.
func NewWebhookDispatcher(logger *slog.Logger, metrics *Metrics) *WebhookDispatcher {
	return &WebhookDispatcher{
		handlers: make(map[string]webhookEntry),
		logger:   logger,
		metrics:  metrics,
	}
}

// Register adds a handler for the given source. A secret already configured
// for the source (via SetSecret) is kept when the registering module passes
// an empty one, so gateway-level secrets survive module registration.
func (d *WebhookDispatcher) Register(source string, h WebhookHandler, secret string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry := d.handlers[source]
	entry.handler = h
	if secret != "" {
		entry.secret = secret
	}
	d.handlers[source] = entry
}

// SetSecret configures the HMAC secret for a source before its handler
// registers. Requests for a source with a secret but no handler are rejected.
func (d *WebhookDispatcher) SetSecret(source, secret string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry := d.handlers[source]
	entry.secret = secret
	d.handlers[source] = entry
}

// ServeHTTP implements http.Handler. It extracts the source from the chi URL
// param, validates payload size and HMAC if configured, and dispatches to the
// registered handler.
func (d *WebhookDispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	source := chi.URLParam(r, "source")
	if source == "" {
		http.Error(w, "missing source", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, security.DefaultMaxPayloadSize+1))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if err := security.ValidatePayloadSize(body, 0); err != nil {
		d.logger.Warn("webhook payload rejected", "source", source, "error", err)
		d.metrics.RecordRejected()
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	d.mu.RLock()
	entry, ok := d.handlers[source]
	d.mu.RUnlock()

	if !ok || entry.handler == nil {
		d.logger.Warn("webhook received for unregistered source", "source", source)
		d.metrics.RecordRejected()
		http.Error(w, "unknown source", http.StatusNotFound)
		return
	}

	// Validate HMAC if a secret is configured for this source.
	if entry.secret != "" {
		sig := r.Header.Get("X-Signature-256")
		if !validateHMAC(body, sig, entry.secret) {
			d.metrics.RecordRejected()
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	if err := security.ValidateJSONDepth(body, 0); err != nil {
		d.logger.Warn("webhook payload rejected", "source", source, "error", err)
		d.metrics.RecordRejected()
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := entry.handler.HandleWebhook(r.Context(), source, body, r.Header); err != nil {
		d.logger.Error("webhook handler failed", "source", source, "error", err)
		d.metrics.RecordFailed()
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	d.metrics.RecordDelivered()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

// validateHMAC checks HMAC-SHA256 signature in constant time.
func validateHMAC(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
