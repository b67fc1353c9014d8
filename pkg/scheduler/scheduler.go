// Package scheduler triggers periodic snapshot refreshes.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
)

// Refresher builds and publishes a new snapshot
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler runs the refresher on an interval, with an immediate first
// run. A failed scheduled refresh is logged and the previous snapshot
// stays published; the next tick tries again from scratch.
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	wg        sync.WaitGroup
	cancel    context.CancelFunc
}

// New creates a scheduler instance
func New(refresher Refresher, interval time.Duration) *Scheduler {
	if interval == 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{refresher: refresher, interval: interval}
}

// Start begins the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.refreshWorker(ctx)

	lgr.Printf("[INFO] scheduler started with refresh interval %v", s.interval)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// RefreshNow triggers an immediate refresh outside the regular ticks
func (s *Scheduler) RefreshNow(ctx context.Context) error {
	lgr.Printf("[DEBUG] triggering immediate snapshot refresh")
	return s.refresher.Refresh(ctx)
}

// refreshWorker refreshes the snapshot immediately and then on every tick
func (s *Scheduler) refreshWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// run immediately on start
	s.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Scheduler) refresh(ctx context.Context) {
	if err := s.refresher.Refresh(ctx); err != nil {
		// keep serving the previous snapshot, retry on the next tick
		lgr.Printf("[ERROR] scheduled refresh failed: %v", err)
	}
}
