// Package crontest provides test doubles for wiring cron jobs.
package crontest

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/xinyong-bot/xinyong/internal/cron"
)

// MockJob is a cron.Job double counting its runs.
type MockJob struct {
	NameVal     string
	ScheduleVal string
	RunFunc     func(ctx context.Context) error

	runs atomic.Int64
}

var _ cron.Job = (*MockJob)(nil)

// Name implements cron.Job.
func (m *MockJob) Name() string { return m.NameVal }

// Schedule implements cron.Job.
func (m *MockJob) Schedule() string { return m.ScheduleVal }

// Run implements cron.Job.
func (m *MockJob) Run(ctx context.Context) error {
	m.runs.Add(1)
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	return nil
}

// CallCount reports how many times Run fired.
func (m *MockJob) CallCount() int {
	return int(m.runs.Load())
}

// MockStatsStore is a cron.StatsStore double.
type MockStatsStore struct {
	PruneFunc func(keep time.Duration) (int64, error)
	CountFunc func() (map[string]int64, error)

	pruneCalls atomic.Int64
	countCalls atomic.Int64
}

var _ cron.StatsStore = (*MockStatsStore)(nil)

// Prune implements cron.StatsStore.
func (m *MockStatsStore) Prune(_ context.Context, keep time.Duration) (int64, error) {
	m.pruneCalls.Add(1)
	if m.PruneFunc != nil {
		return m.PruneFunc(keep)
	}
	return 0, nil
}

// CountByOutcome implements cron.StatsStore.
func (m *MockStatsStore) CountByOutcome(_ context.Context) (map[string]int64, error) {
	m.countCalls.Add(1)
	if m.CountFunc != nil {
		return m.CountFunc()
	}
	return map[string]int64{}, nil
}

// PruneCalls reports how many times Prune fired.
func (m *MockStatsStore) PruneCalls() int {
	return int(m.pruneCalls.Load())
}

// CountCalls reports how many times CountByOutcome fired.
func (m *MockStatsStore) CountCalls() int {
	return int(m.countCalls.Load())
}
