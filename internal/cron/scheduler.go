package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// entry pairs a job with the mutex serializing its runs.
type entry struct {
	job     Job
	running sync.Mutex
}

// Scheduler runs registered jobs on their cron schedules. A tick arriving
// while the previous run of the same job is still going is skipped, never
// queued.
type Scheduler struct {
	mu      sync.Mutex
	logger  *slog.Logger
	entries []*entry
	runner  *cron.Cron
	cancel  context.CancelFunc
}

// NewScheduler creates an empty scheduler. Register jobs first, then Start.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{logger: logger}
}

// RegisterJob adds a job under its name. Registering two jobs with the same
// name is an error; registering after Start has no effect on the running
// schedule.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.job.Name() == j.Name() {
			return fmt.Errorf("cron: duplicate job name %q", j.Name())
		}
	}
	s.entries = append(s.entries, &entry{job: j})
	return nil
}

// Start validates every schedule expression and begins ticking. The context
// handed to job runs stays live until Stop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s.runner = cron.New(cron.WithParser(parser))

	for _, e := range s.entries {
		if _, err := s.runner.AddFunc(e.job.Schedule(), s.tick(ctx, e)); err != nil {
			cancel()
			return fmt.Errorf("cron: invalid schedule for job %q: %w", e.job.Name(), err)
		}
	}

	s.runner.Start()
	s.logger.Info("cron: scheduler started", "jobs", len(s.entries))
	return nil
}

// tick wraps one run of e's job. TryLock makes the overlap check and the
// acquisition a single atomic step, so two ticks can never run the same job
// at once.
func (s *Scheduler) tick(ctx context.Context, e *entry) func() {
	name := e.job.Name()
	return func() {
		if !e.running.TryLock() {
			s.logger.Warn("cron: previous run still active, tick skipped", "job", name)
			return
		}
		defer e.running.Unlock()

		s.logger.Debug("cron: job run starting", "job", name)
		if err := e.job.Run(ctx); err != nil {
			s.logger.Error("cron: job run failed", "job", name, "error", err)
			return
		}
		s.logger.Debug("cron: job run finished", "job", name)
	}
}

// Stop cancels the job context and waits for in-flight runs to drain, or
// until ctx expires, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.runner == nil {
		return nil
	}

	done := s.runner.Stop().Done()
	select {
	case <-done:
		// Nothing in flight.
		s.logger.Info("cron: scheduler stopped")
		return nil
	default:
	}
	select {
	case <-done:
		s.logger.Info("cron: scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cron: waiting for running jobs: %w", ctx.Err())
	}
}
