package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"agendai/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommitter struct {
	fail      error
	committed []*models.BookingSession
}

func (s *stubCommitter) Commit(_ context.Context, sess *models.BookingSession) (*models.Appointment, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	copied := *sess
	s.committed = append(s.committed, &copied)
	return &models.Appointment{
		ID:       int64(len(s.committed)),
		Date:     sess.Date,
		Time:     sess.Time,
		Status:   "confirmado",
		Protocol: fmt.Sprintf("AGD-20250818120000-%d", len(s.committed)),
	}, nil
}

func newTestEngine(committer Committer) *DefaultEngine {
	return NewDefaultEngine(EngineConfig{
		IdleTimeout: 30 * time.Minute,
		MaxAge:      120 * time.Minute,
		MaxSessions: 1000,
		MaxAttempts: 5,
	}, committer, nil, nil)
}

func TestEndToEndBookingFlow(t *testing.T) {
	ctx := context.Background()
	committer := &stubCommitter{}
	engine := newTestEngine(committer)
	engine.now = func() time.Time { return time.Date(2025, time.August, 18, 10, 0, 0, 0, time.Local) }

	// Service named in the trigger message skips the service step.
	reply := engine.ProcessBookingStep(ctx, "u1", "quero agendar um corte masculino")
	require.NotNil(t, reply)
	sess := engine.store.get("u1")
	require.NotNil(t, sess)
	assert.Equal(t, models.StepCollectingDate, sess.Step)
	assert.Equal(t, "Corte Masculino", sess.ServiceName)

	// Date and time in one message skip the time step.
	engine.ProcessBookingStep(ctx, "u1", "amanhã às 14h")
	sess = engine.store.get("u1")
	assert.Equal(t, models.StepCollectingName, sess.Step)
	assert.Equal(t, "2025-08-19", sess.Date)
	assert.Equal(t, "14:00", sess.Time)

	engine.ProcessBookingStep(ctx, "u1", "João Silva")
	engine.ProcessBookingStep(ctx, "u1", "11999999999")
	sess = engine.store.get("u1")
	assert.Equal(t, "João Silva", sess.CustomerName)
	assert.Equal(t, "(11) 99999-9999", sess.CustomerPhone)

	reply = engine.ProcessBookingStep(ctx, "u1", "joao@email.com")
	require.NotEmpty(t, reply.Buttons) // confirmation prompt carries quick replies
	sess = engine.store.get("u1")
	assert.Equal(t, models.StepConfirming, sess.Step)

	reply = engine.ProcessBookingStep(ctx, "u1", "sim")
	assert.Contains(t, reply.Text, "AGD-")
	assert.False(t, engine.HasSession("u1"))
	require.Len(t, committer.committed, 1)
	assert.Equal(t, "joao@email.com", committer.committed[0].CustomerEmail)
}

func TestDateWithoutTimeCollectsTimeSeparately(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&stubCommitter{})
	engine.now = func() time.Time { return time.Date(2025, time.August, 18, 10, 0, 0, 0, time.Local) }

	engine.ProcessBookingStep(ctx, "u1", "quero agendar uma barba")
	engine.ProcessBookingStep(ctx, "u1", "sexta")
	sess := engine.store.get("u1")
	require.NotNil(t, sess)
	assert.Equal(t, models.StepCollectingTime, sess.Step)
	assert.Equal(t, "2025-08-22", sess.Date)

	engine.ProcessBookingStep(ctx, "u1", "às 9h")
	sess = engine.store.get("u1")
	assert.Equal(t, models.StepCollectingName, sess.Step)
	assert.Equal(t, "09:00", sess.Time)
}

func TestRetryPromptDoesNotAdvance(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&stubCommitter{})

	engine.ProcessBookingStep(ctx, "u1", "quero agendar")
	require.Equal(t, models.StepCollectingService, engine.store.get("u1").Step)

	engine.ProcessBookingStep(ctx, "u1", "abacaxi")
	sess := engine.store.get("u1")
	assert.Equal(t, models.StepCollectingService, sess.Step)
	assert.Equal(t, 1, sess.Attempts)
}

func TestAttemptCeilingDeletesSession(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&stubCommitter{})

	engine.ProcessBookingStep(ctx, "u1", "quero agendar")

	var reply *models.BookingReply
	for i := 0; i < 5; i++ {
		reply = engine.ProcessBookingStep(ctx, "u1", "texto sem serviço nenhum")
	}
	assert.Equal(t, msgRestart(), reply.Text)
	assert.False(t, engine.HasSession("u1"))

	// Next message starts over at service collection.
	engine.ProcessBookingStep(ctx, "u1", "quero marcar")
	sess := engine.store.get("u1")
	require.NotNil(t, sess)
	assert.Equal(t, models.StepCollectingService, sess.Step)
	assert.Equal(t, 0, sess.Attempts)
}

func TestUnknownConfirmationDoesNotBurnAttempt(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&stubCommitter{})
	sess := confirmableSession("u1")
	engine.store.save(sess)

	reply := engine.ProcessBookingStep(ctx, "u1", "talvez")
	assert.NotEmpty(t, reply.Buttons)
	assert.Equal(t, 0, engine.store.get("u1").Attempts)
	assert.Equal(t, models.StepConfirming, engine.store.get("u1").Step)
}

func TestCommitFailurePreservesSessionForRetry(t *testing.T) {
	ctx := context.Background()
	committer := &stubCommitter{fail: errors.New("connection reset")}
	engine := newTestEngine(committer)
	engine.store.save(confirmableSession("u1"))

	reply := engine.ProcessBookingStep(ctx, "u1", "sim")
	assert.Equal(t, msgCommitFailed(), reply.Text)
	assert.NotEmpty(t, reply.Buttons)
	require.True(t, engine.HasSession("u1"))

	// The failure was transient; confirming again must succeed.
	committer.fail = nil
	reply = engine.ProcessBookingStep(ctx, "u1", "sim")
	assert.Contains(t, reply.Text, "AGD-")
	assert.False(t, engine.HasSession("u1"))
	assert.Len(t, committer.committed, 1)
}

func TestNegativeConfirmationCancels(t *testing.T) {
	ctx := context.Background()
	committer := &stubCommitter{}
	engine := newTestEngine(committer)
	engine.store.save(confirmableSession("u1"))

	reply := engine.ProcessBookingStep(ctx, "u1", "não")
	assert.Equal(t, msgCancelled(), reply.Text)
	assert.False(t, engine.HasSession("u1"))
	assert.Empty(t, committer.committed)
}

func confirmableSession(userID string) *models.BookingSession {
	now := time.Now()
	return &models.BookingSession{
		UserID:        userID,
		ServiceID:     "corte-masculino",
		ServiceName:   "Corte Masculino",
		Date:          "2025-08-19",
		Time:          "14:00",
		CustomerName:  "João Silva",
		CustomerPhone: "(11) 99999-9999",
		CustomerEmail: "joao@email.com",
		Step:          models.StepConfirming,
		CreatedAt:     now,
		LastActivity:  now,
	}
}

func TestTriggerDuringFlowDoesNotResetSession(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&stubCommitter{})

	engine.ProcessBookingStep(ctx, "u1", "quero agendar um corte masculino")
	require.Equal(t, models.StepCollectingDate, engine.store.get("u1").Step)

	// A redelivered trigger is just another turn for the current step.
	engine.ProcessBookingStep(ctx, "u1", "quero agendar")
	sess := engine.store.get("u1")
	assert.Equal(t, models.StepCollectingDate, sess.Step)
	assert.Equal(t, "Corte Masculino", sess.ServiceName)
}

func TestConcurrentTurnsAndSweep(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&stubCommitter{})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			userID := fmt.Sprintf("u%d", w%4)
			engine.ProcessBookingStep(ctx, userID, "quero agendar uma barba")
			engine.ProcessBookingStep(ctx, userID, "amanhã às 14h")
			engine.ProcessBookingStep(ctx, userID, "João Silva")
		}(w)
	}
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine.sweep()
			_ = engine.GetMemoryStats()
		}()
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		assert.True(t, engine.HasSession(fmt.Sprintf("u%d", i)))
	}
}

func TestStoreHandsOutPrivateCopies(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(&stubCommitter{})

	engine.ProcessBookingStep(ctx, "u1", "quero agendar uma barba")

	a := engine.store.get("u1")
	a.ServiceName = "mutated"
	a.Step = models.StepCancelled

	b := engine.store.get("u1")
	assert.Equal(t, "Barba", b.ServiceName)
	assert.Equal(t, models.StepCollectingDate, b.Step)
}
