package booking

import (
	"context"
	"sync"
	"time"

	"agendai/utils"

	"go.uber.org/zap"
)

// cleanupCounters tallies evictions per reason for observability.
type cleanupCounters struct {
	mu              sync.Mutex
	lastSweep       time.Time
	sweepsRun       int64
	evictedIdle     int64
	evictedAge      int64
	evictedCapacity int64
}

// StartSweeper runs the engine's periodic eviction loop until ctx is
// cancelled. Main owns the lifecycle.
func (e *DefaultEngine) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				utils.GetLogger().Info("booking sweeper: shutdown signal received")
				return
			case <-ticker.C:
				e.sweep()
			}
		}
	}()
}

func (e *DefaultEngine) sweep() CleanupResult {
	res := e.store.trim()

	e.cleanup.mu.Lock()
	e.cleanup.lastSweep = time.Now()
	e.cleanup.sweepsRun++
	e.cleanup.evictedIdle += int64(res.Idle)
	e.cleanup.evictedAge += int64(res.Age)
	e.cleanup.evictedCapacity += int64(res.Capacity)
	e.cleanup.mu.Unlock()

	if res.Idle+res.Age+res.Capacity > 0 {
		utils.GetLogger().Info("booking sweeper: sessions evicted",
			zap.Int("idle", res.Idle), zap.Int("age", res.Age), zap.Int("capacity", res.Capacity))
	}
	return res
}

// ManualCleanup triggers a sweep outside the schedule. With force set it
// drops every session regardless of age.
func (e *DefaultEngine) ManualCleanup(force bool) CleanupResult {
	if force {
		n := e.store.clear()
		utils.GetLogger().Warn("booking sweeper: forced cleanup", zap.Int("dropped", n))
		return CleanupResult{Forced: n}
	}
	return e.sweep()
}

// GetCleanupStatus reports sweep configuration and tallies.
func (e *DefaultEngine) GetCleanupStatus() CleanupStatus {
	e.cleanup.mu.Lock()
	defer e.cleanup.mu.Unlock()
	return CleanupStatus{
		IdleTimeout:     e.store.idleTimeout,
		MaxAge:          e.store.maxAge,
		Capacity:        e.store.capacity,
		LastSweep:       e.cleanup.lastSweep,
		SweepsRun:       e.cleanup.sweepsRun,
		EvictedIdle:     e.cleanup.evictedIdle,
		EvictedAge:      e.cleanup.evictedAge,
		EvictedCapacity: e.cleanup.evictedCapacity,
	}
}
