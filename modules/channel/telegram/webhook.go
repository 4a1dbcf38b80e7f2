package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/xinyong-bot/xinyong/internal/security"
)

// WebhookReceiver processes incoming Telegram webhook payloads.
// It implements gateway.WebhookHandler.
type WebhookReceiver struct {
	handler *Handler
	audit   *security.AuditLogger
	logger  *slog.Logger
	secret  string
}

// NewWebhookReceiver creates a new WebhookReceiver. audit may be nil.
func NewWebhookReceiver(handler *Handler, audit *security.AuditLogger, logger *slog.Logger, secret string) *WebhookReceiver {
	return &WebhookReceiver{
		handler: handler,
		audit:   audit,
		logger:  logger,
		secret:  secret,
	}
}

// HandleWebhook processes a webhook payload from the gateway dispatcher.
// It validates the Telegram-specific secret token header, parses the update,
// and hands it to the shared update handler.
func (w *WebhookReceiver) HandleWebhook(ctx context.Context, _ string, body []byte, headers http.Header) error {
	// Validate Telegram's secret token header if configured.
	if w.secret != "" {
		token := headers.Get("X-Telegram-Bot-Api-Secret-Token")
		if subtle.ConstantTimeCompare([]byte(w.secret), []byte(token)) != 1 {
			if w.audit != nil {
				w.audit.Log(security.AuditEvent{
					Type:    security.EventWebhookRejected,
					Channel: "telegram",
					Detail:  "secret token mismatch",
				})
			}
			return errors.New("telegram: invalid webhook secret token")
		}
	}

	var update Update
	if err := json.Unmarshal(body, &update); err != nil {
		return errors.New("telegram: invalid update JSON: " + err.Error())
	}

	w.handler.HandleUpdate(ctx, &update)
	return nil
}
