package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/applyforge/internal/types"
)

// Reaper periodically fails requests abandoned at a review gate. A request
// counts as abandoned when it has sat in awaiting_review without any update
// for longer than the TTL.
type Reaper struct {
	store    RequestStore
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewReaper creates a reaper sweeping at the given interval with the given
// idle TTL.
func NewReaper(store RequestStore, interval, ttl time.Duration) *Reaper {
	return &Reaper{store: store, ttl: ttl, interval: interval, now: time.Now}
}

// Run sweeps on a ticker until the context is canceled. Sweep errors are
// reported through the callback and do not stop the loop.
func (r *Reaper) Run(ctx context.Context, onSweep func(failed int, err error)) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			failed, err := r.Sweep(ctx)
			if onSweep != nil {
				onSweep(failed, err)
			}
		}
	}
}

// Sweep fails every stale awaiting_review request and returns how many it
// reaped.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.ttl)
	stale, err := r.store.ListAwaitingReviewBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, req := range stale {
		req.Status = types.StatusFailed
		msg := fmt.Sprintf("review abandoned: no activity for %s", r.ttl)
		for i := range req.Steps {
			if req.Steps[i].Status == types.StepPending {
				req.Steps[i].Fail(r.now(), msg)
				break
			}
		}
		if err := r.store.UpdateRequest(ctx, req); err != nil {
			return failed, err
		}
		failed++
	}
	return failed, nil
}
