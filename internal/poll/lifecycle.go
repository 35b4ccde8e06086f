package poll

import (
	"context"
	"log"
	"sync"
	"time"
)

// LifecycleManager closes polls whose deadline has passed. Closing is
// bookkeeping: the voting engine rejects past-deadline stakes by clock
// comparison regardless, but a closed poll reads correctly to clients and
// stays resolvable by its authority.
type LifecycleManager struct {
	pollManager *Manager
	interval    time.Duration
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// NewLifecycleManager creates a new lifecycle manager
func NewLifecycleManager(pm *Manager, interval time.Duration) *LifecycleManager {
	return &LifecycleManager{
		pollManager: pm,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the lifecycle management goroutine
func (lm *LifecycleManager) Start(ctx context.Context) {
	lm.wg.Add(1)
	go lm.run(ctx)
}

// Stop stops the lifecycle manager
func (lm *LifecycleManager) Stop() {
	close(lm.stopCh)
	lm.wg.Wait()
}

// run is the main loop that checks for polls to close
func (lm *LifecycleManager) run(ctx context.Context) {
	defer lm.wg.Done()

	ticker := time.NewTicker(lm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-lm.stopCh:
			return
		case <-ticker.C:
			lm.CheckAndClosePolls()
		}
	}
}

// CheckAndClosePolls closes any active polls whose deadline has passed
func (lm *LifecycleManager) CheckAndClosePolls() {
	now := lm.pollManager.now().Unix()

	for _, p := range lm.pollManager.List() {
		if p.Status == StatusActive && now >= p.ClosesAt {
			if err := lm.pollManager.Close(p.ID); err != nil {
				log.Printf("Failed to close poll %s: %v", p.ID, err)
			} else {
				log.Printf("Poll %s auto-closed (deadline passed)", p.ID)
			}
		}
	}
}
