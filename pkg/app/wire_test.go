package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xinyong-bot/xinyong/internal/core"
	"github.com/xinyong-bot/xinyong/internal/cron/crontest"
	"github.com/xinyong-bot/xinyong/internal/layout"
	"github.com/xinyong-bot/xinyong/internal/security"
	"github.com/xinyong-bot/xinyong/internal/sticker"
)

type stubComposer struct{}

func (stubComposer) Compose(_ layout.Plan, _ bool) ([]byte, error) {
	return []byte("img"), nil
}

// stubStore stands in for the sqlite store on the recorder path. The cron
// wiring tests use crontest.MockStatsStore instead.
type stubStore struct {
	events []sticker.RenderEvent
}

var _ sticker.Recorder = (*stubStore)(nil)

func (s *stubStore) RecordRender(_ context.Context, ev sticker.RenderEvent) {
	s.events = append(s.events, ev)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWireRecorder_AttachesStore(t *testing.T) {
	logger := testLogger()
	appCtx := core.NewAppContext(logger, t.TempDir(), t.TempDir())

	svc := sticker.NewService(stubComposer{}, layout.Suffixes{}, logger)
	store := &stubStore{}
	appCtx.RegisterService("render.sticker", svc)
	appCtx.RegisterService("stats.store", store)

	wireRecorder(appCtx, logger)

	if _, err := svc.Render(context.Background(), 100); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(store.events) != 1 {
		t.Fatalf("recorded events = %d, want 1", len(store.events))
	}
	if store.events[0].Outcome != sticker.OutcomeOK {
		t.Errorf("outcome = %q, want %q", store.events[0].Outcome, sticker.OutcomeOK)
	}
}

func TestWireRecorder_MissingServices(t *testing.T) {
	logger := testLogger()
	appCtx := core.NewAppContext(logger, t.TempDir(), t.TempDir())

	// Nothing registered: wiring is a no-op.
	wireRecorder(appCtx, logger)

	// Render service alone: recording stays disabled.
	appCtx.RegisterService("render.sticker", sticker.NewService(stubComposer{}, layout.Suffixes{}, logger))
	wireRecorder(appCtx, logger)
}

func TestWireCron_AppendsScheduler(t *testing.T) {
	logger := testLogger()
	appCtx := core.NewAppContext(logger, t.TempDir(), t.TempDir())
	appCtx.RegisterService("stats.store", &crontest.MockStatsStore{})
	appCtx.RegisterService("stats.retention", 14*24*time.Hour)

	application := core.NewApp(appCtx)
	limiter := security.NewRateLimiter(security.RateLimitConfig{})

	if err := wireCron(application, appCtx, logger, limiter); err != nil {
		t.Fatalf("wireCron: %v", err)
	}

	mod, ok := application.Module("cron")
	if !ok {
		t.Fatal("cron module not appended")
	}
	cm, ok := mod.(*cronModule)
	if !ok {
		t.Fatalf("cron module is %T, want *cronModule", mod)
	}

	// The default jobs are already registered, so their names are taken.
	err := cm.scheduler.RegisterJob(&crontest.MockJob{NameVal: "stats_report", ScheduleVal: "* * * * *"})
	if err == nil {
		t.Error("stats_report job should already be registered")
	}
	probe := &crontest.MockJob{NameVal: "probe", ScheduleVal: "* * * * *"}
	if err := cm.scheduler.RegisterJob(probe); err != nil {
		t.Fatalf("registering probe job: %v", err)
	}

	if err := cm.Start(); err != nil {
		t.Fatalf("scheduler start: %v", err)
	}
	if err := cm.Stop(context.Background()); err != nil {
		t.Fatalf("scheduler stop: %v", err)
	}
	if probe.CallCount() != 0 {
		t.Errorf("probe runs before any tick = %d, want 0", probe.CallCount())
	}
}

func TestWireCron_NoStatsStore(t *testing.T) {
	logger := testLogger()
	appCtx := core.NewAppContext(logger, t.TempDir(), t.TempDir())
	application := core.NewApp(appCtx)

	if err := wireCron(application, appCtx, logger, security.NewRateLimiter(security.RateLimitConfig{})); err != nil {
		t.Fatalf("wireCron: %v", err)
	}
	if _, ok := application.Module("cron"); !ok {
		t.Fatal("cron module not appended without a stats store")
	}
}

func TestWireCron_BadStoreService(t *testing.T) {
	logger := testLogger()
	appCtx := core.NewAppContext(logger, t.TempDir(), t.TempDir())
	appCtx.RegisterService("stats.store", "not a store")
	application := core.NewApp(appCtx)

	err := wireCron(application, appCtx, logger, security.NewRateLimiter(security.RateLimitConfig{}))
	if err == nil {
		t.Error("expected error for a stats.store service that cannot prune")
	}
}
