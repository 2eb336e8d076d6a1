package conversation

import (
	"context"

	"agendai/models"
)

// SessionStore persists one ConversationState per user across stateless
// webhook calls. The primary tier is Redis with a TTL; a process-local
// map mirrors every write so a single-process deployment stays correct
// when Redis is down. No method ever surfaces an infrastructure error:
// failures degrade silently to the local tier and are counted.
type SessionStore interface {
	GetState(ctx context.Context, userID string) *models.ConversationState
	SaveState(ctx context.Context, state *models.ConversationState)
	DeleteState(ctx context.Context, userID string)
	UpdateStatus(ctx context.Context, userID string, status models.ConversationStatus)
	AddMessage(ctx context.Context, userID string, msg models.ConversationMessage)
	StartBookingFlow(ctx context.Context, userID string)
	EndBookingFlow(ctx context.Context, userID string)
	UpdateUserContext(ctx context.Context, userID string, fields map[string]string)
	GetActiveConversations(ctx context.Context) []*models.ConversationState
	GetStats() StoreStats
	HealthCheck(ctx context.Context) HealthReport
}

// StoreStats is the observability snapshot exposed by the store.
type StoreStats struct {
	LocalEntries   int   `json:"localEntries"`
	RedisErrors    int64 `json:"redisErrors"`
	SweepsRun      int64 `json:"sweepsRun"`
	EvictedExpired int64 `json:"evictedExpired"`
}

// HealthReport describes which tiers are currently serving.
type HealthReport struct {
	RedisAvailable bool `json:"redisAvailable"`
	LocalEntries   int  `json:"localEntries"`
	Degraded       bool `json:"degraded"`
}
