package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"agendai/models"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore points at a dead Redis so every test exercises the silent
// degradation to the local tier, which is exactly the offline contract.
func newTestStore(t *testing.T) *DefaultSessionStore {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	return NewDefaultSessionStore(client, 30*time.Minute, 5)
}

func TestGetStateUnknownUserIsFreshDefault(t *testing.T) {
	store := newTestStore(t)

	state := store.GetState(context.Background(), "never-seen")
	require.NotNil(t, state)
	assert.Equal(t, models.StatusInactive, state.Status)
	assert.Empty(t, state.Messages)
	assert.Equal(t, "never-seen", state.UserID)
}

func TestSaveStateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state := store.GetState(ctx, "u1")
	state.Status = models.StatusActive
	state.AppendMessage(models.ConversationMessage{Role: "user", Content: "oi"}, 5)
	store.SaveState(ctx, state)

	got := store.GetState(ctx, "u1")
	assert.Equal(t, models.StatusActive, got.Status)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "oi", got.Messages[0].Content)
}

func TestExpiryIsStrict(t *testing.T) {
	state := models.NewConversationState("u1", 30)

	// Just inside the timeout: not expired.
	state.LastActivity = time.Now().Add(-30*time.Minute + time.Second)
	assert.False(t, state.IsExpired())

	// Just past it: expired.
	state.LastActivity = time.Now().Add(-30*time.Minute - time.Second)
	assert.True(t, state.IsExpired())
}

func TestExpiredLocalEntryYieldsFreshState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state := store.GetState(ctx, "u1")
	state.Status = models.StatusActive
	store.SaveState(ctx, state)
	// SaveState mirrors a clone, so expire the stored entry directly.
	store.mu.Lock()
	store.local["u1"].LastActivity = time.Now().Add(-31 * time.Minute)
	store.mu.Unlock()

	got := store.GetState(ctx, "u1")
	assert.Equal(t, models.StatusInactive, got.Status)
	assert.Empty(t, got.Messages)
}

func TestHistoryIsBounded(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		store.AddMessage(ctx, "u1", models.ConversationMessage{Role: "user", Content: string(rune('a' + i))})
	}

	got := store.GetState(ctx, "u1")
	require.Len(t, got.Messages, 5)
	// Oldest dropped, newest kept.
	assert.Equal(t, "d", got.Messages[0].Content)
	assert.Equal(t, "h", got.Messages[4].Content)
	// First message activated the conversation.
	assert.Equal(t, models.StatusActive, got.Status)
}

func TestBookingFlowFlags(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.StartBookingFlow(ctx, "u1")
	got := store.GetState(ctx, "u1")
	assert.True(t, got.BookingActive)
	assert.Equal(t, models.StatusBookingFlow, got.Status)

	store.EndBookingFlow(ctx, "u1")
	got = store.GetState(ctx, "u1")
	assert.False(t, got.BookingActive)
	assert.Equal(t, models.StatusActive, got.Status)
}

func TestGetActiveConversations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.UpdateStatus(ctx, "active-1", models.StatusActive)
	store.StartBookingFlow(ctx, "booking-1")
	store.UpdateStatus(ctx, "done-1", models.StatusCompleted)

	active := store.GetActiveConversations(ctx)
	ids := make(map[string]bool)
	for _, s := range active {
		ids[s.UserID] = true
	}
	assert.True(t, ids["active-1"])
	assert.True(t, ids["booking-1"])
	assert.False(t, ids["done-1"])
}

func TestSweepEvictsExpiredLocalEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fresh := store.GetState(ctx, "fresh")
	fresh.Status = models.StatusActive
	store.SaveState(ctx, fresh)

	stale := store.GetState(ctx, "stale")
	stale.Status = models.StatusActive
	store.SaveState(ctx, stale)
	// SaveState mirrors a clone, so expire the stored entry directly.
	store.mu.Lock()
	store.local["stale"].LastActivity = time.Now().Add(-31 * time.Minute)
	store.mu.Unlock()

	store.sweep(ctx)

	stats := store.GetStats()
	assert.Equal(t, 1, stats.LocalEntries)
	assert.GreaterOrEqual(t, stats.EvictedExpired, int64(1))
	assert.Equal(t, int64(1), stats.SweepsRun)
}

func TestHealthCheckReportsDegraded(t *testing.T) {
	store := newTestStore(t)

	report := store.HealthCheck(context.Background())
	assert.False(t, report.RedisAvailable)
	assert.True(t, report.Degraded)
}

func TestConcurrentTurnsForOneUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const workers = 8
	const turns = 10
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < turns; i++ {
				store.AddMessage(ctx, "u1", models.ConversationMessage{Role: "user", Content: "oi"})
				_ = store.GetState(ctx, "u1")
			}
		}(w)
	}
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.sweep(ctx)
			_ = store.GetActiveConversations(ctx)
		}()
	}
	wg.Wait()

	state := store.GetState(ctx, "u1")
	assert.Equal(t, models.StatusActive, state.Status)
	assert.LessOrEqual(t, len(state.Messages), 5)
}

func TestGetStateHandsOutPrivateCopies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.AddMessage(ctx, "u1", models.ConversationMessage{Role: "user", Content: "oi"})

	a := store.GetState(ctx, "u1")
	a.Messages[0].Content = "mutated"
	a.Status = models.StatusExpired

	b := store.GetState(ctx, "u1")
	assert.Equal(t, "oi", b.Messages[0].Content)
	assert.Equal(t, models.StatusActive, b.Status)
}
