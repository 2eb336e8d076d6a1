package conversation

import (
	"context"
	"time"

	"agendai/utils"

	"go.uber.org/zap"
)

// StartSweeper runs the periodic eviction loop until ctx is cancelled.
// The caller owns the lifecycle; the store never spawns this on its own.
func (s *DefaultSessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				utils.GetLogger().Info("session sweeper: shutdown signal received")
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

// sweep drops expired entries from the local tier and defensively
// re-applies a TTL to primary keys that lost theirs.
func (s *DefaultSessionStore) sweep(ctx context.Context) {
	s.sweepsRun.Add(1)

	var expired []string
	s.mu.RLock()
	for id, state := range s.local {
		if state.IsExpired() {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	if len(expired) > 0 {
		s.mu.Lock()
		for _, id := range expired {
			// Re-check under the write lock; a turn may have landed meanwhile.
			if state, ok := s.local[id]; ok && state.IsExpired() {
				delete(s.local, id)
				s.evictedExpired.Add(1)
			}
		}
		s.mu.Unlock()
		utils.GetLogger().Debug("session sweeper: local entries evicted", zap.Int("count", len(expired)))
	}

	keys, err := s.client.Keys(ctx, stateKeyPrefix+"*").Result()
	if err != nil {
		s.redisErrors.Add(1)
		return
	}
	for _, key := range keys {
		ttl, err := s.client.TTL(ctx, key).Result()
		if err != nil {
			continue
		}
		if ttl == -1 {
			// Key persisted without a TTL; expire it on the store's horizon.
			s.client.Expire(ctx, key, s.ttl)
		}
	}
}
