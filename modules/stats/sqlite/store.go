package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/xinyong-bot/xinyong/internal/sticker"
)

// Event is one recorded render attempt.
type Event struct {
	ID        string
	Amount    int64
	Outcome   string
	Origin    string
	Duration  time.Duration
	CreatedAt time.Time
}

// Store persists render events in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ping reports whether the underlying database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Record inserts one event. A missing ID or timestamp is filled in.
func (s *Store) Record(ctx context.Context, ev Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO render_events (id, amount, outcome, origin, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Amount, ev.Outcome, ev.Origin,
		ev.Duration.Milliseconds(),
		ev.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: record event: %w", err)
	}
	return nil
}

// RecordRender implements the render service's recorder hook. Storage
// failures are logged, never surfaced to the render path.
func (s *Store) RecordRender(ctx context.Context, ev sticker.RenderEvent) {
	err := s.Record(ctx, Event{
		Amount:   ev.Amount,
		Outcome:  ev.Outcome,
		Origin:   ev.Origin,
		Duration: ev.Duration,
	})
	if err != nil {
		s.logger.Error("sqlite: recording render event failed", "error", err)
	}
}

// CountByOutcome returns the number of recorded events per outcome.
func (s *Store) CountByOutcome(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT outcome, COUNT(*) FROM render_events GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: count by outcome: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			outcome string
			n       int64
		)
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("sqlite: scan outcome count: %w", err)
		}
		counts[outcome] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: count rows: %w", err)
	}
	return counts, nil
}

// Recent returns up to limit events, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, outcome, origin, duration_ms, created_at
		FROM render_events
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: recent events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEvents(rows)
}

// Prune deletes events older than keep and reports how many were removed.
func (s *Store) Prune(ctx context.Context, keep time.Duration) (int64, error) {
	cutoff := time.Now().Add(-keep).UTC().Format(time.RFC3339Nano)

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM render_events WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prune events: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return n, nil
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			ev           Event
			durationMS   int64
			createdAtStr string
		)

		if err := rows.Scan(&ev.ID, &ev.Amount, &ev.Outcome, &ev.Origin, &durationMS, &createdAtStr); err != nil {
			return nil, fmt.Errorf("sqlite: scan event: %w", err)
		}

		ev.Duration = time.Duration(durationMS) * time.Millisecond

		if createdAtStr != "" {
			t, err := time.Parse(time.RFC3339Nano, createdAtStr)
			if err != nil {
				return nil, fmt.Errorf("sqlite: parse created_at %q: %w", createdAtStr, err)
			}
			ev.CreatedAt = t
		}

		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: scan event rows: %w", err)
	}

	return events, nil
}
