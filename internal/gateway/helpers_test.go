package gateway

import "context"

// fakeAssets is a minimal asset catalog whose Verify outcome is scripted.
type fakeAssets struct {
	err error
}

func (a *fakeAssets) Verify() error { return a.err }

// fakeStats is a scripted stand-in for the render stats store.
type fakeStats struct {
	pingErr  error
	counts   map[string]int64
	countErr error
}

func (s *fakeStats) Ping(_ context.Context) error { return s.pingErr }

func (s *fakeStats) CountByOutcome(_ context.Context) (map[string]int64, error) {
	if s.countErr != nil {
		return nil, s.countErr
	}
	return s.counts, nil
}

// fakeChannel reports a fixed readiness state.
type fakeChannel struct {
	ready bool
}

func (c *fakeChannel) Ready() bool { return c.ready }
