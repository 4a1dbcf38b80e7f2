// Package sticker orchestrates sticker production. A Service formats an
// amount in both scripts, plans the caption layout, hands the plan to a
// composer and reports every attempt to metrics, traces and an optional
// recorder.
package sticker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xinyong-bot/xinyong/internal/layout"
	"github.com/xinyong-bot/xinyong/internal/numeral"
)

// ErrUnsupportedMagnitude rejects amounts that cannot be rendered: zero, or
// one hundred million and beyond in either direction.
var ErrUnsupportedMagnitude = errors.New("sticker: unsupported magnitude")

// Default caption suffixes appended after the numerals.
const (
	DefaultHanSuffix        = "社会信用"
	DefaultLatinSuffixFull  = "Social Credit"
	DefaultLatinSuffixShort = "Soc. Credit"
)

// Render outcomes as reported to metrics and recorders.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Composer turns a layout plan and a sign into an encoded sticker image.
type Composer interface {
	Compose(plan layout.Plan, positive bool) ([]byte, error)
}

// RenderEvent describes one completed render attempt.
type RenderEvent struct {
	Amount   int64
	Outcome  string
	Origin   string
	Duration time.Duration
}

// Recorder receives render events. Calls happen on the render path, so
// implementations must return quickly.
type Recorder interface {
	RecordRender(ctx context.Context, ev RenderEvent)
}

// Service renders amounts into sticker images.
type Service struct {
	composer Composer
	suffixes layout.Suffixes
	logger   *slog.Logger
	recorder Recorder
}

// DefaultSuffixes returns the stock caption suffixes.
func DefaultSuffixes() layout.Suffixes {
	return layout.Suffixes{
		Han:        DefaultHanSuffix,
		LatinFull:  DefaultLatinSuffixFull,
		LatinShort: DefaultLatinSuffixShort,
	}
}

// NewService creates a render service. Empty suffix fields fall back to the
// defaults.
func NewService(composer Composer, suffixes layout.Suffixes, logger *slog.Logger) *Service {
	if suffixes.Han == "" {
		suffixes.Han = DefaultHanSuffix
	}
	if suffixes.LatinFull == "" {
		suffixes.LatinFull = DefaultLatinSuffixFull
	}
	if suffixes.LatinShort == "" {
		suffixes.LatinShort = DefaultLatinSuffixShort
	}
	return &Service{
		composer: composer,
		suffixes: suffixes,
		logger:   logger,
	}
}

// SetRecorder attaches a recorder for completed attempts. Call before the
// first render; a nil recorder disables recording.
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// Render produces the WebP sticker for amount. The amount's sign picks the
// base icon and prefixes both caption scripts; the magnitude must lie in
// [1, 10^8).
func (s *Service) Render(ctx context.Context, amount int64) ([]byte, error) {
	start := time.Now()
	origin := originFrom(ctx)

	ctx, span := tracer.Start(ctx, "sticker.render", trace.WithAttributes(
		attribute.Int64("sticker.amount", amount),
		attribute.String("sticker.origin", origin),
	))
	defer span.End()

	if amount == 0 || amount >= numeral.MaxMagnitude || amount <= -numeral.MaxMagnitude {
		err := fmt.Errorf("%w: %d", ErrUnsupportedMagnitude, amount)
		s.finish(ctx, span, RenderEvent{Amount: amount, Outcome: OutcomeRejected, Origin: origin, Duration: time.Since(start)}, err)
		return nil, err
	}

	positive := amount > 0
	magnitude := amount
	if !positive {
		magnitude = -amount
	}

	latin, ok := numeral.FormatLatin(magnitude)
	if !ok {
		err := fmt.Errorf("%w: %d", ErrUnsupportedMagnitude, amount)
		s.finish(ctx, span, RenderEvent{Amount: amount, Outcome: OutcomeRejected, Origin: origin, Duration: time.Since(start)}, err)
		return nil, err
	}
	han, ok := numeral.FormatHan(magnitude)
	if !ok {
		err := fmt.Errorf("%w: %d", ErrUnsupportedMagnitude, amount)
		s.finish(ctx, span, RenderEvent{Amount: amount, Outcome: OutcomeRejected, Origin: origin, Duration: time.Since(start)}, err)
		return nil, err
	}

	sign := "+"
	if !positive {
		sign = "-"
	}
	plan := layout.BuildPlan(sign+latin, sign+han, s.suffixes)

	data, err := s.composer.Compose(plan, positive)
	if err != nil {
		s.logger.Error("sticker render failed", "amount", amount, "origin", origin, "error", err)
		s.finish(ctx, span, RenderEvent{Amount: amount, Outcome: OutcomeError, Origin: origin, Duration: time.Since(start)}, err)
		return nil, fmt.Errorf("sticker: rendering %d: %w", amount, err)
	}

	renderBytes.Observe(float64(len(data)))
	span.SetAttributes(attribute.Int("sticker.bytes", len(data)))
	s.logger.Debug("sticker rendered", "amount", amount, "origin", origin, "bytes", len(data), "duration", time.Since(start))
	s.finish(ctx, span, RenderEvent{Amount: amount, Outcome: OutcomeOK, Origin: origin, Duration: time.Since(start)}, nil)
	return data, nil
}

// finish reports one attempt to metrics, the span and the recorder.
func (s *Service) finish(ctx context.Context, span trace.Span, ev RenderEvent, err error) {
	renderAttempts.WithLabelValues(ev.Outcome, ev.Origin).Inc()
	renderDuration.Observe(ev.Duration.Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, ev.Outcome)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	if s.recorder != nil {
		s.recorder.RecordRender(ctx, ev)
	}
}
