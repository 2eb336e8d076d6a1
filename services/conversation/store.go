package conversation

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"agendai/models"
	"agendai/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const stateKeyPrefix = "conv:state:"

func stateKey(userID string) string {
	return stateKeyPrefix + userID
}

// DefaultSessionStore implements SessionStore over Redis with a local
// fallback map.
type DefaultSessionStore struct {
	client       *redis.Client
	ttl          time.Duration
	historyLimit int

	mu    sync.RWMutex
	local map[string]*models.ConversationState

	redisErrors    atomic.Int64
	sweepsRun      atomic.Int64
	evictedExpired atomic.Int64
}

// NewDefaultSessionStore creates a session store. client may be backed by
// an unreachable Redis; the store degrades to local-only in that case.
func NewDefaultSessionStore(client *redis.Client, ttl time.Duration, historyLimit int) *DefaultSessionStore {
	return &DefaultSessionStore{
		client:       client,
		ttl:          ttl,
		historyLimit: historyLimit,
		local:        make(map[string]*models.ConversationState),
	}
}

// GetState returns the user's conversation state, trying Redis first and
// the local mirror second. A miss on both tiers (or an expired entry)
// yields a fresh default state. Never fails. The returned value is the
// caller's own copy; concurrent turns for one user each get their own,
// and the later SaveState wins.
func (s *DefaultSessionStore) GetState(ctx context.Context, userID string) *models.ConversationState {
	if state := s.getFromRedis(ctx, userID); state != nil {
		if !state.IsExpired() {
			s.mirror(state)
			return state
		}
		// Expired in the primary: purge both tiers and fall through.
		s.DeleteState(ctx, userID)
	}

	s.mu.RLock()
	state, ok := s.local[userID]
	if ok {
		state = state.Clone()
	}
	s.mu.RUnlock()
	if ok {
		if !state.IsExpired() {
			return state
		}
		s.mu.Lock()
		delete(s.local, userID)
		s.mu.Unlock()
		s.evictedExpired.Add(1)
	}

	return models.NewConversationState(userID, int(s.ttl.Minutes()))
}

func (s *DefaultSessionStore) getFromRedis(ctx context.Context, userID string) *models.ConversationState {
	data, err := s.client.Get(ctx, stateKey(userID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		s.redisErrors.Add(1)
		utils.GetLogger().Debug("session store: redis get failed, using local tier",
			zap.String("userId", userID), zap.Error(err))
		return nil
	}
	var state models.ConversationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		s.redisErrors.Add(1)
		utils.GetLogger().Warn("session store: corrupt state blob dropped",
			zap.String("userId", userID), zap.Error(err))
		s.client.Del(ctx, stateKey(userID))
		return nil
	}
	return &state
}

// SaveState writes to Redis with the store TTL and unconditionally
// mirrors to the local map. Redis failures are counted, never returned.
func (s *DefaultSessionStore) SaveState(ctx context.Context, state *models.ConversationState) {
	state.Touch()
	if data, err := json.Marshal(state); err == nil {
		if err := s.client.Set(ctx, stateKey(state.UserID), data, s.ttl).Err(); err != nil {
			s.redisErrors.Add(1)
			utils.GetLogger().Debug("session store: redis set failed, local tier only",
				zap.String("userId", state.UserID), zap.Error(err))
		}
	}
	s.mirror(state)
}

// mirror keeps a private clone in the local tier. Map entries are only
// ever replaced, never written through, so readers under RLock and
// callers holding a state handed out earlier cannot race.
func (s *DefaultSessionStore) mirror(state *models.ConversationState) {
	clone := state.Clone()
	s.mu.Lock()
	s.local[clone.UserID] = clone
	s.mu.Unlock()
}

// DeleteState removes the user's state from both tiers.
func (s *DefaultSessionStore) DeleteState(ctx context.Context, userID string) {
	if err := s.client.Del(ctx, stateKey(userID)).Err(); err != nil && err != redis.Nil {
		s.redisErrors.Add(1)
	}
	s.mu.Lock()
	delete(s.local, userID)
	s.mu.Unlock()
}

// UpdateStatus flips the conversation status and persists.
func (s *DefaultSessionStore) UpdateStatus(ctx context.Context, userID string, status models.ConversationStatus) {
	state := s.GetState(ctx, userID)
	state.Status = status
	s.SaveState(ctx, state)
}

// AddMessage appends a turn to the bounded history. The first message of
// an inactive conversation activates it.
func (s *DefaultSessionStore) AddMessage(ctx context.Context, userID string, msg models.ConversationMessage) {
	state := s.GetState(ctx, userID)
	state.AppendMessage(msg, s.historyLimit)
	s.SaveState(ctx, state)
}

// StartBookingFlow marks the conversation as running the booking automaton.
func (s *DefaultSessionStore) StartBookingFlow(ctx context.Context, userID string) {
	state := s.GetState(ctx, userID)
	state.BookingActive = true
	state.Status = models.StatusBookingFlow
	s.SaveState(ctx, state)
}

// EndBookingFlow clears the booking flag after completion or cancellation.
func (s *DefaultSessionStore) EndBookingFlow(ctx context.Context, userID string) {
	state := s.GetState(ctx, userID)
	state.BookingActive = false
	state.Status = models.StatusActive
	s.SaveState(ctx, state)
}

// UpdateUserContext merges free-form context fields into the state.
func (s *DefaultSessionStore) UpdateUserContext(ctx context.Context, userID string, fields map[string]string) {
	state := s.GetState(ctx, userID)
	if state.UserContext == nil {
		state.UserContext = map[string]string{}
	}
	for k, v := range fields {
		state.UserContext[k] = v
	}
	s.SaveState(ctx, state)
}

// GetActiveConversations returns the union of both tiers' entries whose
// status is active or booking_flow and that have not expired, deduplicated
// by user id (the primary tier wins).
func (s *DefaultSessionStore) GetActiveConversations(ctx context.Context) []*models.ConversationState {
	seen := make(map[string]*models.ConversationState)

	keys, err := s.client.Keys(ctx, stateKeyPrefix+"*").Result()
	if err != nil {
		s.redisErrors.Add(1)
	}
	for _, key := range keys {
		val, err := s.client.Get(ctx, key).Result()
		if err != nil {
			continue // skip corrupt/missing
		}
		var state models.ConversationState
		if err := json.Unmarshal([]byte(val), &state); err != nil {
			continue
		}
		if isActive(&state) {
			seen[state.UserID] = &state
		}
	}

	s.mu.RLock()
	for id, state := range s.local {
		if _, dup := seen[id]; dup {
			continue
		}
		if isActive(state) {
			seen[id] = state.Clone()
		}
	}
	s.mu.RUnlock()

	out := make([]*models.ConversationState, 0, len(seen))
	for _, state := range seen {
		out = append(out, state)
	}
	return out
}

func isActive(state *models.ConversationState) bool {
	if state.IsExpired() {
		return false
	}
	return state.Status == models.StatusActive || state.Status == models.StatusBookingFlow
}

// GetStats returns the store's observability counters.
func (s *DefaultSessionStore) GetStats() StoreStats {
	s.mu.RLock()
	localCount := len(s.local)
	s.mu.RUnlock()
	return StoreStats{
		LocalEntries:   localCount,
		RedisErrors:    s.redisErrors.Load(),
		SweepsRun:      s.sweepsRun.Load(),
		EvictedExpired: s.evictedExpired.Load(),
	}
}

// HealthCheck pings Redis and reports whether the store is degraded to
// local-only operation.
func (s *DefaultSessionStore) HealthCheck(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	redisOK := s.client.Ping(ctx).Err() == nil

	s.mu.RLock()
	localCount := len(s.local)
	s.mu.RUnlock()

	return HealthReport{
		RedisAvailable: redisOK,
		LocalEntries:   localCount,
		Degraded:       !redisOK,
	}
}
