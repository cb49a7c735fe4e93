package form

import (
	"context"
	"sync"
	"time"
)

// PendingReload is a Reloader for hosts without a page to reload. It
// remembers the requested delay so the host can wait and call Load itself.
type PendingReload struct {
	mu      sync.Mutex
	pending bool
	delay   time.Duration
}

func (p *PendingReload) ScheduleReload(delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = true
	p.delay = delay
}

// Wait blocks for the scheduled delay and clears the request. It reports
// false when no reload was scheduled or ctx ended first.
func (p *PendingReload) Wait(ctx context.Context) bool {
	p.mu.Lock()
	pending, delay := p.pending, p.delay
	p.pending = false
	p.mu.Unlock()

	if !pending {
		return false
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
