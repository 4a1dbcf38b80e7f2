// Package telemetry configures OpenTelemetry trace export for the daemon.
// When disabled, the otel global tracer provider stays at its no-op default
// and instrumented code pays only for span bookkeeping.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/xinyong-bot/xinyong/internal/config"
)

// DefaultServiceName is reported as service.name when the config leaves it
// empty.
const DefaultServiceName = "xinyong"

const shutdownTimeout = 5 * time.Second

// Provider owns the tracer provider lifecycle.
type Provider struct {
	logger   *slog.Logger
	provider *sdktrace.TracerProvider
}

// Setup installs the global tracer provider according to cfg. A nil or
// disabled config installs nothing and returns a Provider whose Shutdown is
// a no-op.
func Setup(ctx context.Context, cfg *config.TelemetryConfig, version string, logger *slog.Logger) (*Provider, error) {
	p := &Provider{logger: logger}
	if cfg == nil || !cfg.Enabled {
		return p, nil
	}

	var opts []otlptracehttp.Option
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: creating otlp exporter: %w", err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = DefaultServiceName
	}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(name),
		semconv.ServiceVersion(version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	p.provider = tp

	logger.Info("telemetry enabled", "endpoint", cfg.Endpoint, "service", name)
	return p, nil
}

// Shutdown flushes pending spans and stops the provider. Safe to call on a
// Provider created from a disabled config.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := p.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("telemetry: shutdown: %w", err)
	}
	return nil
}
