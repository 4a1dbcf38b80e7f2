package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// StatsStore is the subset of the stats store needed by cron jobs. Defined
// here to avoid a dependency on the storage module.
type StatsStore interface {
	Prune(ctx context.Context, keep time.Duration) (int64, error)
	CountByOutcome(ctx context.Context) (map[string]int64, error)
}

// Sweeper drops expired rate limiter windows.
type Sweeper interface {
	SweepExpired() int
}

// StatsPruneJob deletes render events older than the retention window.
type StatsPruneJob struct {
	Store        StatsStore
	Retention    time.Duration
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "17 3 * * *"
}

// Compile-time interface check.
var _ Job = (*StatsPruneJob)(nil)

// Name implements Job.
func (j *StatsPruneJob) Name() string { return "stats_prune" }

// Schedule implements Job.
func (j *StatsPruneJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "17 3 * * *"
}

// Run prunes render events older than Retention.
func (j *StatsPruneJob) Run(ctx context.Context) error {
	pruned, err := j.Store.Prune(ctx, j.Retention)
	if err != nil {
		return fmt.Errorf("cron: pruning render events: %w", err)
	}
	if pruned > 0 {
		j.Logger.Info("cron: pruned render events", "count", pruned, "retention", j.Retention)
	}
	return nil
}

// StatsReportJob logs a tally of render outcomes, giving operators a daily
// pulse without scraping metrics.
type StatsReportJob struct {
	Store        StatsStore
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "0 0 * * *"
}

// Compile-time interface check.
var _ Job = (*StatsReportJob)(nil)

// Name implements Job.
func (j *StatsReportJob) Name() string { return "stats_report" }

// Schedule implements Job.
func (j *StatsReportJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "0 0 * * *"
}

// Run logs the outcome counts currently on record.
func (j *StatsReportJob) Run(ctx context.Context) error {
	counts, err := j.Store.CountByOutcome(ctx)
	if err != nil {
		return fmt.Errorf("cron: counting render events: %w", err)
	}
	j.Logger.Info("cron: render outcome tally",
		"ok", counts["ok"],
		"rejected", counts["rejected"],
		"error", counts["error"],
	)
	return nil
}

// LimiterSweepJob drops rate limiter entries whose windows have expired,
// keeping the tracking table small between bursts.
type LimiterSweepJob struct {
	Limiter      Sweeper
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "*/10 * * * *"
}

// Compile-time interface check.
var _ Job = (*LimiterSweepJob)(nil)

// Name implements Job.
func (j *LimiterSweepJob) Name() string { return "limiter_sweep" }

// Schedule implements Job.
func (j *LimiterSweepJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "*/10 * * * *"
}

// Run sweeps expired limiter windows.
func (j *LimiterSweepJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("cron: limiter sweep cancelled: %w", ctx.Err())
	}
	if dropped := j.Limiter.SweepExpired(); dropped > 0 {
		j.Logger.Debug("cron: swept limiter windows", "dropped", dropped)
	}
	return nil
}
