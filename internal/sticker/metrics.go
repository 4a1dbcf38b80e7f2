package sticker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/xinyong-bot/xinyong/internal/sticker")

var (
	renderAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xinyong",
		Subsystem: "render",
		Name:      "attempts_total",
		Help:      "Render attempts by outcome and origin.",
	}, []string{"outcome", "origin"})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "xinyong",
		Subsystem: "render",
		Name:      "duration_seconds",
		Help:      "Wall time spent producing one sticker.",
		Buckets:   prometheus.DefBuckets,
	})

	renderBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "xinyong",
		Subsystem: "render",
		Name:      "sticker_bytes",
		Help:      "Encoded size of rendered stickers.",
		Buckets:   prometheus.ExponentialBuckets(1024, 2, 10),
	})
)
