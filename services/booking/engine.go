package booking

import (
	"context"
	"time"

	"agendai/models"
	"agendai/services/conversation"
	"agendai/services/extract"
	"agendai/utils"

	"go.uber.org/zap"
)

// DefaultEngine implements Engine over an in-memory session store and a
// transactional committer.
type DefaultEngine struct {
	store       *sessionStore
	committer   Committer
	sessions    conversation.SessionStore
	reminders   ReminderScheduler
	maxAttempts int

	cleanup cleanupCounters

	// now is swappable so expiry tests don't have to sleep.
	now func() time.Time
}

// EngineConfig bundles the engine's tunables.
type EngineConfig struct {
	IdleTimeout time.Duration
	MaxAge      time.Duration
	MaxSessions int
	MaxAttempts int
}

// NewDefaultEngine wires the engine. reminders may be nil when no queue
// is configured.
func NewDefaultEngine(cfg EngineConfig, committer Committer, sessions conversation.SessionStore, reminders ReminderScheduler) *DefaultEngine {
	return &DefaultEngine{
		store:       newSessionStore(cfg.IdleTimeout, cfg.MaxAge, cfg.MaxSessions),
		committer:   committer,
		sessions:    sessions,
		reminders:   reminders,
		maxAttempts: cfg.MaxAttempts,
		now:         time.Now,
	}
}

// HasSession reports whether a booking flow is in progress for the user.
func (e *DefaultEngine) HasSession(userID string) bool {
	return e.store.has(userID)
}

// startBooking opens a fresh session at the service-collection step and
// opportunistically runs the service extractor against the triggering
// message, skipping a turn when the user already named the service. Only
// reachable through ProcessBookingStep, so the per-user lock is held.
func (e *DefaultEngine) startBooking(ctx context.Context, userID, message string) *models.BookingReply {
	now := e.now()
	sess := &models.BookingSession{
		UserID:       userID,
		Step:         models.StepCollectingService,
		CreatedAt:    now,
		LastActivity: now,
	}

	if id, name, ok := extract.Service(message); ok {
		sess.ServiceID = id
		sess.ServiceName = name
		sess.Step = models.StepCollectingDate
	}

	e.store.save(sess)
	if e.sessions != nil {
		e.sessions.StartBookingFlow(ctx, userID)
	}
	utils.GetLogger().Debug("booking: session started",
		zap.String("userId", userID), zap.String("step", string(sess.Step)))

	if sess.Step == models.StepCollectingDate {
		return &models.BookingReply{Text: promptDate(sess.ServiceName)}
	}
	return &models.BookingReply{Text: promptService()}
}

// ProcessBookingStep advances the automaton one turn. Turns for the same
// user are serialized by a per-user lock; different users never contend.
func (e *DefaultEngine) ProcessBookingStep(ctx context.Context, userID, message string) *models.BookingReply {
	lock := e.store.lockUser(userID)
	lock.Lock()
	defer lock.Unlock()

	sess := e.store.get(userID)
	if sess == nil {
		return e.startBooking(ctx, userID, message)
	}

	sess.Attempts++
	if now := e.now(); now.After(sess.LastActivity) {
		sess.LastActivity = now
	}

	if sess.Attempts > e.maxAttempts {
		e.abandon(ctx, userID)
		return &models.BookingReply{Text: msgRestart()}
	}

	reply, outcome := e.dispatch(ctx, sess, message)
	switch outcome {
	case stepAdvanced:
		sess.Attempts = 0
		e.store.save(sess)
	case stepRetry:
		if sess.Attempts >= e.maxAttempts {
			e.abandon(ctx, userID)
			return &models.BookingReply{Text: msgRestart()}
		}
		sess.Errors = append(sess.Errors, message)
		e.store.save(sess)
	case stepNeutral:
		// Unrecognized confirmation input: re-prompt without burning an attempt.
		sess.Attempts--
		e.store.save(sess)
	case stepFinished:
		// Session already deleted by the handler.
	}
	return reply
}

// abandon is the attempt-ceiling exit: the session is dropped entirely so
// the user's next message starts a brand-new flow.
func (e *DefaultEngine) abandon(ctx context.Context, userID string) {
	e.store.delete(userID)
	if e.sessions != nil {
		e.sessions.EndBookingFlow(ctx, userID)
	}
	utils.GetLogger().Info("booking: session abandoned after repeated failures",
		zap.String("userId", userID))
}

// GetMemoryStats exposes the in-memory store snapshot.
func (e *DefaultEngine) GetMemoryStats() MemoryStats {
	return e.store.stats()
}
