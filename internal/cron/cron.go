// Package cron schedules the daemon's periodic housekeeping: pruning old
// render statistics, logging outcome counts, and sweeping idle senders out
// of the rate limiter.
package cron

import "context"

// Job is one periodic task.
type Job interface {
	// Name identifies the job in logs and must be unique per scheduler.
	Name() string

	// Schedule returns the job's 5-field cron expression.
	Schedule() string

	// Run does one pass of the work. The context is canceled when the
	// scheduler stops.
	Run(ctx context.Context) error
}
