package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xinyong-bot/xinyong/internal/channel"
	"github.com/xinyong-bot/xinyong/internal/security"
	"github.com/xinyong-bot/xinyong/internal/sticker"
)

// unsupportedAmountReply is sent in private chats when an amount cannot be
// rendered. Group chats stay silent to avoid noise.
const unsupportedAmountReply = "That number is off the social credit scale. Use a non-zero amount of up to eight digits."

// Renderer produces sticker bytes for a signed amount. It is implemented by
// the sticker render service.
type Renderer interface {
	Render(ctx context.Context, amount int64) ([]byte, error)
}

// Handler turns incoming Telegram updates into rendered sticker responses.
// It is shared by the poller and the webhook receiver, which differ only in
// how updates arrive.
type Handler struct {
	client    *Client
	renderer  Renderer
	allowList *channel.AllowList
	limiter   *security.RateLimiter
	audit     *security.AuditLogger
	logger    *slog.Logger
	config    Config
}

// NewHandler creates a new Handler. limiter and audit may be nil, in which
// case rate limiting and audit logging are disabled.
func NewHandler(client *Client, renderer Renderer, allowList *channel.AllowList, limiter *security.RateLimiter, audit *security.AuditLogger, logger *slog.Logger, config Config) *Handler {
	return &Handler{
		client:    client,
		renderer:  renderer,
		allowList: allowList,
		limiter:   limiter,
		audit:     audit,
		logger:    logger,
		config:    config,
	}
}

// HandleUpdate dispatches a single update to the matching flow.
func (h *Handler) HandleUpdate(ctx context.Context, update *Update) {
	switch {
	case update.InlineQuery != nil:
		h.handleInlineQuery(ctx, update.InlineQuery)
	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	default:
		h.logger.Debug("ignoring update without message or inline query",
			"update_id", update.UpdateID,
		)
	}
}

// handleInlineQuery renders the queried amount, uploads the sticker to the
// cache chat to obtain a file_id, and answers with a cached sticker result.
// Every failure path answers with an empty result set so the client's
// spinner does not hang.
func (h *Handler) handleInlineQuery(ctx context.Context, q *InlineQuery) {
	h.auditEvent(security.EventInlineQuery, q.From.ID, 0, q.Query)

	if !h.allowList.IsAllowed(q.From.ID, q.From.Username, 0) {
		h.auditEvent(security.EventAuthFailure, q.From.ID, 0, "inline query denied by allow list")
		h.logger.Debug("inline query denied by allow list", "sender", q.From.ID)
		h.answerEmpty(ctx, q.ID)
		return
	}

	amount, err := parseAmount(q.Query)
	if err != nil {
		h.logger.Debug("ignoring inline query", "query_id", q.ID, "reason", err)
		h.answerEmpty(ctx, q.ID)
		return
	}

	if err := h.allowRate(q.From.ID); err != nil {
		h.auditEvent(security.EventRateLimit, q.From.ID, 0, "inline query rate limited")
		h.logger.Debug("inline query rate limited", "sender", q.From.ID)
		h.answerEmpty(ctx, q.ID)
		return
	}

	data, err := h.renderer.Render(sticker.WithOrigin(ctx, "inline"), amount)
	if err != nil {
		if errors.Is(err, sticker.ErrUnsupportedMagnitude) {
			h.logger.Debug("inline amount out of range", "amount", amount)
		} else {
			h.logger.Error("inline render failed", "amount", amount, "error", err)
		}
		h.answerEmpty(ctx, q.ID)
		return
	}

	// Inline answers can only reference already-uploaded files, so park the
	// fresh render in the cache chat to obtain a file_id.
	uploaded, err := h.client.SendSticker(ctx, SendStickerRequest{
		ChatID:              h.config.CacheChatID,
		Sticker:             data,
		DisableNotification: true,
	})
	if err != nil {
		h.logger.Error("sticker cache upload failed", "amount", amount, "error", err)
		h.answerEmpty(ctx, q.ID)
		return
	}
	if uploaded.Sticker == nil {
		h.logger.Error("sticker cache upload returned no sticker", "amount", amount)
		h.answerEmpty(ctx, q.ID)
		return
	}

	result := InlineQueryResultCachedSticker{
		Type:          "sticker",
		ID:            strconv.FormatInt(amount, 10),
		StickerFileID: uploaded.Sticker.FileID,
	}
	if err := h.client.AnswerInlineQuery(ctx, q.ID, []InlineQueryResultCachedSticker{result}, h.config.CacheTime); err != nil {
		h.logger.Error("answerInlineQuery failed", "query_id", q.ID, "error", err)
	}
}

// handleMessage replies to integer messages with a rendered sticker. The
// numeric parse runs before auditing so that ordinary group chatter never
// reaches the audit log.
func (h *Handler) handleMessage(ctx context.Context, msg *Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}

	amount, err := parseAmount(msg.Text)
	if err != nil {
		return
	}

	h.auditEvent(security.EventMessage, msg.From.ID, msg.Chat.ID, msg.Text)

	if !h.allowList.IsAllowed(msg.From.ID, msg.From.Username, msg.Chat.ID) {
		h.auditEvent(security.EventAuthFailure, msg.From.ID, msg.Chat.ID, "message denied by allow list")
		h.logger.Debug("message denied by allow list",
			"sender", msg.From.ID,
			"chat", msg.Chat.ID,
		)
		return
	}

	if err := h.allowRate(msg.From.ID); err != nil {
		h.auditEvent(security.EventRateLimit, msg.From.ID, msg.Chat.ID, "message rate limited")
		h.logger.Debug("message rate limited", "sender", msg.From.ID)
		return
	}

	data, err := h.renderer.Render(sticker.WithOrigin(ctx, "message"), amount)
	if err != nil {
		if errors.Is(err, sticker.ErrUnsupportedMagnitude) {
			if msg.Chat.Type == "private" {
				h.reply(ctx, msg, unsupportedAmountReply)
			}
			return
		}
		h.logger.Error("message render failed", "amount", amount, "error", err)
		return
	}

	if _, err := h.client.SendSticker(ctx, SendStickerRequest{
		ChatID:           msg.Chat.ID,
		Sticker:          data,
		ReplyToMessageID: msg.MessageID,
		MessageThreadID:  msg.MessageThreadID,
	}); err != nil {
		h.logger.Error("sticker reply failed", "chat", msg.Chat.ID, "error", err)
	}
}

// allowRate consults the rate limiter keyed by sender. A nil limiter allows
// everything.
func (h *Handler) allowRate(senderID int64) error {
	if h.limiter == nil {
		return nil
	}
	return h.limiter.Allow(strconv.FormatInt(senderID, 10))
}

// auditEvent records an audit entry when an audit logger is wired.
func (h *Handler) auditEvent(typ security.EventType, senderID, chatID int64, detail string) {
	if h.audit == nil {
		return
	}
	event := security.AuditEvent{
		Type:     typ,
		Channel:  "telegram",
		SenderID: strconv.FormatInt(senderID, 10),
		Detail:   detail,
	}
	if chatID != 0 {
		event.ChatID = strconv.FormatInt(chatID, 10)
	}
	h.audit.Log(event)
}

// answerEmpty dismisses an inline query without results.
func (h *Handler) answerEmpty(ctx context.Context, queryID string) {
	if err := h.client.AnswerInlineQuery(ctx, queryID, nil, 0); err != nil {
		h.logger.Debug("empty inline answer failed", "query_id", queryID, "error", err)
	}
}

// reply sends a plain-text reply to msg.
func (h *Handler) reply(ctx context.Context, msg *Message, text string) {
	if _, err := h.client.SendMessage(ctx, SendMessageRequest{
		ChatID:           msg.Chat.ID,
		Text:             text,
		ReplyToMessageID: msg.MessageID,
		MessageThreadID:  msg.MessageThreadID,
	}); err != nil {
		h.logger.Error("text reply failed", "chat", msg.Chat.ID, "error", err)
	}
}

// parseAmount extracts a base-10 signed integer from user-provided text.
func parseAmount(text string) (int64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, errors.New("empty text")
	}
	amount, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return amount, nil
}
