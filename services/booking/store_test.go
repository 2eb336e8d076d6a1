package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"agendai/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionAt(userID string, created, lastActivity time.Time) *models.BookingSession {
	return &models.BookingSession{
		UserID:       userID,
		Step:         models.StepCollectingDate,
		CreatedAt:    created,
		LastActivity: lastActivity,
	}
}

func TestTrimEvictsIdleSessions(t *testing.T) {
	st := newSessionStore(30*time.Minute, 120*time.Minute, 1000)
	now := time.Now()

	st.save(sessionAt("fresh", now, now))
	st.save(sessionAt("idle", now.Add(-40*time.Minute), now.Add(-31*time.Minute)))

	res := st.trim()
	assert.Equal(t, 1, res.Idle)
	assert.Equal(t, 0, res.Age)
	assert.Nil(t, st.get("idle"))
	assert.NotNil(t, st.get("fresh"))
}

func TestTrimEvictsOverAgedSessions(t *testing.T) {
	st := newSessionStore(30*time.Minute, 120*time.Minute, 1000)
	now := time.Now()

	// Active right now, but created past the absolute ceiling.
	st.save(sessionAt("ancient", now.Add(-121*time.Minute), now))

	res := st.trim()
	assert.Equal(t, 1, res.Age)
	assert.Nil(t, st.get("ancient"))
}

func TestTrimEvictsOldestBeyondCapacity(t *testing.T) {
	st := newSessionStore(30*time.Minute, 120*time.Minute, 10)
	now := time.Now()

	for i := 0; i < 13; i++ {
		id := fmt.Sprintf("u%02d", i)
		st.save(sessionAt(id, now.Add(-time.Duration(13-i)*time.Minute), now))
	}

	res := st.trim()
	// Exactly enough of the oldest-created entries go to return to cap.
	assert.Equal(t, 3, res.Capacity)
	assert.Equal(t, 10, st.len())
	assert.Nil(t, st.get("u00"))
	assert.Nil(t, st.get("u01"))
	assert.Nil(t, st.get("u02"))
	assert.NotNil(t, st.get("u03"))
	assert.NotNil(t, st.get("u12"))
}

func TestExpiredSessionNotResumed(t *testing.T) {
	engine := newTestEngine(&stubCommitter{})
	now := time.Now()

	stale := sessionAt("u1", now.Add(-40*time.Minute), now.Add(-31*time.Minute))
	stale.Step = models.StepCollectingEmail
	engine.store.save(stale)

	engine.sweep()
	assert.False(t, engine.HasSession("u1"))

	// The next message starts a brand-new flow at the beginning.
	engine.ProcessBookingStep(context.Background(), "u1", "quero agendar")
	sess := engine.store.get("u1")
	require.NotNil(t, sess)
	assert.Equal(t, models.StepCollectingService, sess.Step)
}

func TestManualCleanupForceDropsEverything(t *testing.T) {
	engine := newTestEngine(&stubCommitter{})
	now := time.Now()
	engine.store.save(sessionAt("u1", now, now))
	engine.store.save(sessionAt("u2", now, now))

	res := engine.ManualCleanup(true)
	assert.Equal(t, 2, res.Forced)
	assert.Equal(t, 0, engine.store.len())
}

func TestCleanupStatusCounters(t *testing.T) {
	engine := newTestEngine(&stubCommitter{})
	now := time.Now()
	engine.store.save(sessionAt("idle", now.Add(-35*time.Minute), now.Add(-31*time.Minute)))

	engine.sweep()

	status := engine.GetCleanupStatus()
	assert.Equal(t, int64(1), status.SweepsRun)
	assert.Equal(t, int64(1), status.EvictedIdle)
	assert.Equal(t, int64(0), status.EvictedCapacity)
	assert.False(t, status.LastSweep.IsZero())
}
