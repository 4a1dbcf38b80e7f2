package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/xinyong-bot/xinyong/internal/channel"
	"github.com/xinyong-bot/xinyong/internal/core"
	"github.com/xinyong-bot/xinyong/internal/gateway"
	"github.com/xinyong-bot/xinyong/internal/security"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Telegram{})
}

// Compile-time interface guards.
var (
	_ core.Configurable      = (*Telegram)(nil)
	_ core.Provisioner       = (*Telegram)(nil)
	_ core.Validator         = (*Telegram)(nil)
	_ core.Starter           = (*Telegram)(nil)
	_ core.Stopper           = (*Telegram)(nil)
	_ gateway.WebhookHandler = (*WebhookReceiver)(nil)
)

// Telegram implements the Telegram Bot API channel for xinyong.
type Telegram struct {
	config    Config
	client    *Client
	logger    *slog.Logger
	allowList *channel.AllowList
	botUser   *User
	appCtx    *core.AppContext
	handler   *Handler
	ready     atomic.Bool

	// Set during Start() depending on mode.
	poller          *Poller
	webhookReceiver *WebhookReceiver
}

// Ready reports whether the bot token has been validated against the API.
// The gateway health endpoint reads this concurrently with Start.
func (t *Telegram) Ready() bool {
	return t.ready.Load()
}

// ModuleInfo implements core.Module.
func (t *Telegram) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "channel.telegram",
		New: func() core.Module { return &Telegram{} },
	}
}

// Configure implements core.Configurable.
func (t *Telegram) Configure(node *yaml.Node) error {
	if err := node.Decode(&t.config); err != nil {
		return fmt.Errorf("telegram: decode config: %w", err)
	}
	t.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (t *Telegram) Provision(ctx *core.AppContext) error {
	t.appCtx = ctx
	t.logger = ctx.Logger
	t.client = NewClient(t.config.Token, t.config.APIURL)
	t.allowList = channel.NewAllowList(t.config.AllowUsers, t.config.AllowChats)
	ctx.RegisterService("channel.telegram", t)

	// Hand the secrets to the credential store so the redactor picks them
	// up on the post-start sync.
	if svc, ok := ctx.Service("security.credentials"); ok {
		if creds, ok := svc.(*security.CredentialStore); ok {
			creds.Set("telegram.bot_token", t.config.Token)
			creds.Set("telegram.webhook_secret", t.config.WebhookSecret)
		}
	}
	return nil
}

// Validate implements core.Validator.
func (t *Telegram) Validate() error {
	if t.config.Token == "" {
		return errors.New("telegram: token is required")
	}
	if t.config.CacheChatID == 0 {
		return errors.New("telegram: cache_chat_id is required (inline results are built from stickers uploaded there)")
	}
	switch t.config.Mode {
	case "polling", "webhook":
	default:
		return fmt.Errorf("telegram: invalid mode %q (must be \"polling\" or \"webhook\")", t.config.Mode)
	}
	if t.config.Mode == "webhook" && t.config.WebhookURL == "" {
		return errors.New("telegram: webhook_url is required when mode is \"webhook\"")
	}
	return t.config.validate()
}

// Start implements core.Starter. It resolves the renderer and security
// services, validates the bot token, then starts either polling or webhook
// mode.
func (t *Telegram) Start() error {
	renderer, err := t.resolveRenderer()
	if err != nil {
		return err
	}

	// Rate limiting and audit logging are optional collaborators.
	var limiter *security.RateLimiter
	if svc, ok := t.appCtx.Service("security.ratelimiter"); ok {
		limiter, _ = svc.(*security.RateLimiter)
	}
	var audit *security.AuditLogger
	if svc, ok := t.appCtx.Service("security.audit"); ok {
		audit, _ = svc.(*security.AuditLogger)
	}

	t.handler = NewHandler(t.client, renderer, t.allowList, limiter, audit, t.logger, t.config)

	// Validate token and get bot info.
	user, err := t.client.GetMe(context.Background())
	if err != nil {
		return fmt.Errorf("telegram: getMe failed (check token): %w", err)
	}
	t.botUser = user
	t.ready.Store(true)
	t.logger.Info("telegram bot authenticated",
		"id", user.ID,
		"username", user.Username,
	)

	switch t.config.Mode {
	case "polling":
		t.poller = NewPoller(t.client, t.handler, t.logger, t.config)
		t.poller.Start()
		t.logger.Info("telegram polling started",
			"timeout", t.config.PollingTimeout,
		)

	case "webhook":
		if t.config.WebhookSecret == "" {
			t.logger.Warn("telegram webhook running without secret_token, " +
				"consider setting webhook_secret for production deployments")
		}
		t.webhookReceiver = NewWebhookReceiver(t.handler, audit, t.logger, t.config.WebhookSecret)

		// Register webhook with the gateway's dispatcher.
		if err := t.registerWebhook(); err != nil {
			return err
		}

		// Set the webhook URL with Telegram.
		if err := t.client.SetWebhook(context.Background(), SetWebhookRequest{
			URL:            t.config.WebhookURL,
			SecretToken:    t.config.WebhookSecret,
			AllowedUpdates: t.config.AllowedUpdates,
		}); err != nil {
			return fmt.Errorf("telegram: setWebhook failed: %w", err)
		}
		t.logger.Info("telegram webhook configured",
			"url", t.config.WebhookURL,
		)
	}

	return nil
}

// resolveRenderer fetches the sticker render service from the registry.
// The render module registers it during provisioning, which runs before any
// module starts.
func (t *Telegram) resolveRenderer() (Renderer, error) {
	svc, ok := t.appCtx.Service("render.sticker")
	if !ok {
		return nil, errors.New("telegram: render.sticker service not found (is the render module loaded?)")
	}
	renderer, ok := svc.(Renderer)
	if !ok {
		return nil, errors.New("telegram: render.sticker service does not implement Renderer")
	}
	return renderer, nil
}

// registerWebhook resolves the gateway webhook dispatcher from the service
// registry and registers the WebhookReceiver as a handler.
func (t *Telegram) registerWebhook() error {
	svc, ok := t.appCtx.Service("gateway.webhook_dispatcher")
	if !ok {
		return errors.New("telegram: gateway.webhook_dispatcher service not found (is the gateway module loaded?)")
	}

	dispatcher, ok := svc.(*gateway.WebhookDispatcher)
	if !ok {
		return errors.New("telegram: gateway.webhook_dispatcher is not a *gateway.WebhookDispatcher")
	}

	// Pass empty HMAC secret. Telegram uses its own X-Telegram-Bot-Api-Secret-Token
	// header instead of HMAC-SHA256; validation happens inside WebhookReceiver.HandleWebhook.
	dispatcher.Register("telegram", t.webhookReceiver, "")
	return nil
}

// Stop implements core.Stopper.
func (t *Telegram) Stop(ctx context.Context) error {
	t.logger.Info("telegram channel stopping")
	t.ready.Store(false)

	switch t.config.Mode {
	case "polling":
		if t.poller != nil {
			t.poller.Stop()
		}
	case "webhook":
		if err := t.client.DeleteWebhook(ctx); err != nil {
			t.logger.Warn("telegram: failed to delete webhook on shutdown", "error", err)
		}
	}

	return nil
}
