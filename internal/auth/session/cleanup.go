package session

import (
	"context"
	"sync"
	"time"

	"github.com/brizzai/fitdash/internal/logger"
	"go.uber.org/zap"
)

// CleanupManager periodically removes sessions that have been idle for longer
// than the idle timeout
type CleanupManager struct {
	store       *Store
	interval    time.Duration
	idleTimeout time.Duration

	mu       sync.Mutex
	started  bool
	stopped  bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewCleanupManager creates a cleanup manager for store. A non-positive
// interval or idle timeout disables it.
func NewCleanupManager(store *Store, interval, idleTimeout time.Duration) *CleanupManager {
	return &CleanupManager{
		store:       store,
		interval:    interval,
		idleTimeout: idleTimeout,
		stopChan:    make(chan struct{}),
		doneChan:    make(chan struct{}),
	}
}

// Start begins the cleanup loop in a goroutine
func (cm *CleanupManager) Start(ctx context.Context) {
	if cm.interval <= 0 || cm.idleTimeout <= 0 {
		return
	}
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.started || cm.stopped {
		return
	}
	cm.started = true

	logger.Info("Starting session cleanup",
		zap.Duration("interval", cm.interval),
		zap.Duration("idle_timeout", cm.idleTimeout),
	)
	go cm.run(ctx)
}

// Stop ends the cleanup loop and waits for it to finish
func (cm *CleanupManager) Stop() {
	cm.mu.Lock()
	if cm.stopped {
		cm.mu.Unlock()
		return
	}
	cm.stopped = true
	close(cm.stopChan)
	started := cm.started
	cm.mu.Unlock()

	if started {
		<-cm.doneChan
	}
}

func (cm *CleanupManager) run(ctx context.Context) {
	defer close(cm.doneChan)

	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cm.Cleanup()
		case <-cm.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Cleanup removes the sessions idle for longer than the idle timeout
func (cm *CleanupManager) Cleanup() int {
	count := cm.store.DeleteIdle(cm.store.now().Add(-cm.idleTimeout))
	if count > 0 {
		logger.Info("Removed idle sessions", zap.Int("count", count), zap.Int("remaining", cm.store.Len()))
	}
	return count
}
