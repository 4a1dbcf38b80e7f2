package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/xinyong-bot/xinyong/internal/core"
	"github.com/xinyong-bot/xinyong/internal/security"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Gateway{})
}

// assetVerifier is the readiness surface of the render asset catalog.
type assetVerifier interface {
	Verify() error
}

// renderStats is the slice of the stats store the gateway reads. Declared
// locally so the gateway does not import the sqlite module package.
type renderStats interface {
	Ping(ctx context.Context) error
	CountByOutcome(ctx context.Context) (map[string]int64, error)
}

// channelStatus reports whether a chat channel holds an authenticated session.
type channelStatus interface {
	Ready() bool
}

// Gateway is the HTTP gateway module. It exposes health, metrics, status,
// and webhook endpoints.
type Gateway struct {
	config     Config
	appCtx     *core.AppContext
	logger     *slog.Logger
	server     *http.Server
	metrics    *Metrics
	dispatcher *WebhookDispatcher
	startedAt  time.Time

	// Resolved lazily at Start() via service registry.
	assets  assetVerifier
	store   renderStats
	channel channelStatus
	audit   *security.AuditLogger
	limiter *security.RateLimiter
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.appCtx = ctx
	g.logger = ctx.Logger
	g.metrics = &Metrics{}
	g.dispatcher = NewWebhookDispatcher(g.logger, g.metrics)

	// Register services for cross-module discovery.
	ctx.RegisterService("gateway.metrics", g.metrics)
	ctx.RegisterService("gateway.webhook_dispatcher", g.dispatcher)

	// Pre-register per-source secrets so HMAC validation is in force even
	// when the handling module registers without one.
	for source, cfg := range g.config.Webhooks {
		if cfg.Secret != "" {
			g.dispatcher.SetSecret(source, cfg.Secret)
			g.logger.Info("webhook source configured", "source", source)
		}
	}

	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", g.config.Bind); err != nil {
		return errors.New("gateway: invalid bind address: " + g.config.Bind)
	}
	return nil
}

// Start implements core.Starter. It resolves dependencies from the service
// registry (lazy binding) and starts the HTTP server.
func (g *Gateway) Start() error {
	// Resolve optional services; the gateway degrades gracefully when the
	// render, stats, or channel modules are not loaded.
	if svc, ok := g.appCtx.Service("render.assets"); ok {
		if assets, ok := svc.(assetVerifier); ok {
			g.assets = assets
		}
	}
	if svc, ok := g.appCtx.Service("stats.store"); ok {
		if store, ok := svc.(renderStats); ok {
			g.store = store
		}
	}
	if svc, ok := g.appCtx.Service("channel.telegram"); ok {
		if ch, ok := svc.(channelStatus); ok {
			g.channel = ch
		}
	}
	if svc, ok := g.appCtx.Service("security.audit"); ok {
		g.audit, _ = svc.(*security.AuditLogger)
	}
	if svc, ok := g.appCtx.Service("security.ratelimiter"); ok {
		g.limiter, _ = svc.(*security.RateLimiter)
	}

	g.startedAt = time.Now()

	mux := g.buildRouter()

	g.server = &http.Server{
		Addr:         g.config.Bind,
		Handler:      mux,
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Bind)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
