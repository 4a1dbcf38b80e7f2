package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xinyong-bot/xinyong/internal/core"
	"github.com/xinyong-bot/xinyong/internal/cron"
	"github.com/xinyong-bot/xinyong/internal/security"
	"github.com/xinyong-bot/xinyong/internal/sticker"
)

// cronModule wraps a *cron.Scheduler to satisfy core.Module, core.Starter,
// and core.Stopper, so the scheduler participates in the App lifecycle.
type cronModule struct {
	scheduler *cron.Scheduler
}

func (m *cronModule) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: "cron"}
}

func (m *cronModule) Start() error {
	return m.scheduler.Start()
}

func (m *cronModule) Stop(ctx context.Context) error {
	return m.scheduler.Stop(ctx)
}

// wireRecorder attaches the stats store to the render service so completed
// render attempts land in the database. Both sides are optional; a config
// that loads only one of them simply runs without recording.
// Must be called after LoadModules and before Start.
func wireRecorder(appCtx *core.AppContext, logger *slog.Logger) {
	svc, ok := appCtx.Service("render.sticker")
	if !ok {
		return
	}
	renderer, ok := svc.(*sticker.Service)
	if !ok {
		return
	}

	stats, ok := appCtx.Service("stats.store")
	if !ok {
		logger.Info("stats store not loaded, render recording disabled")
		return
	}
	recorder, ok := stats.(sticker.Recorder)
	if !ok {
		logger.Warn("stats.store service is not a render recorder, recording disabled")
		return
	}

	renderer.SetRecorder(recorder)
	logger.Info("render recording wired to stats store")
}

// wireCron assembles the background scheduler: the rate limiter sweep,
// plus render event pruning and a daily outcome report when the stats
// store is loaded. The scheduler is appended to the app lifecycle so it
// starts after the loaded modules and stops before them.
// Must be called after LoadModules and before Start.
func wireCron(application *core.App, appCtx *core.AppContext, logger *slog.Logger, limiter *security.RateLimiter) error {
	scheduler := cron.NewScheduler(logger)

	if err := scheduler.RegisterJob(&cron.LimiterSweepJob{Limiter: limiter, Logger: logger}); err != nil {
		return fmt.Errorf("registering limiter sweep job: %w", err)
	}

	if svc, ok := appCtx.Service("stats.store"); ok {
		store, ok := svc.(cron.StatsStore)
		if !ok {
			return fmt.Errorf("stats.store service does not support pruning")
		}

		var retention time.Duration
		if svc, ok := appCtx.Service("stats.retention"); ok {
			retention, _ = svc.(time.Duration)
		}
		// Zero retention means keep forever; a prune job would empty the table.
		if retention > 0 {
			if err := scheduler.RegisterJob(&cron.StatsPruneJob{
				Store:     store,
				Retention: retention,
				Logger:    logger,
			}); err != nil {
				return fmt.Errorf("registering stats prune job: %w", err)
			}
		}

		if err := scheduler.RegisterJob(&cron.StatsReportJob{
			Store:  store,
			Logger: logger,
		}); err != nil {
			return fmt.Errorf("registering stats report job: %w", err)
		}
	}

	application.AppendModule("cron", &cronModule{scheduler: scheduler})
	return nil
}
