package booking

import (
	"context"
	"time"

	"agendai/models"
)

// Engine drives the multi-step booking automaton. Every public operation
// returns a well-formed reply; parse, persistence and infrastructure
// failures are all resolved internally into user-facing text.
type Engine interface {
	ProcessBookingStep(ctx context.Context, userID, message string) *models.BookingReply
	HasSession(userID string) bool
	GetMemoryStats() MemoryStats
	GetCleanupStatus() CleanupStatus
	ManualCleanup(force bool) CleanupResult
}

// Committer persists a finished booking session as an appointment inside
// a single relational transaction.
type Committer interface {
	Commit(ctx context.Context, session *models.BookingSession) (*models.Appointment, error)
}

// ReminderScheduler enqueues an appointment reminder after a successful
// commit. Failures to enqueue are logged by the engine, never surfaced.
type ReminderScheduler interface {
	ScheduleAppointmentReminder(ctx context.Context, appt *models.Appointment, phone string) error
}

// MemoryStats is a snapshot of the engine's in-memory session store.
type MemoryStats struct {
	ActiveSessions int                        `json:"activeSessions"`
	ByStep         map[models.BookingStep]int `json:"byStep"`
	OldestAgeMin   float64                    `json:"oldestAgeMinutes"`
}

// CleanupStatus reports the sweep configuration and eviction tallies.
type CleanupStatus struct {
	IdleTimeout     time.Duration `json:"idleTimeout"`
	MaxAge          time.Duration `json:"maxAge"`
	Capacity        int           `json:"capacity"`
	LastSweep       time.Time     `json:"lastSweep"`
	SweepsRun       int64         `json:"sweepsRun"`
	EvictedIdle     int64         `json:"evictedIdle"`
	EvictedAge      int64         `json:"evictedAge"`
	EvictedCapacity int64         `json:"evictedCapacity"`
}

// CleanupResult is what one sweep pass removed.
type CleanupResult struct {
	Idle     int `json:"idle"`
	Age      int `json:"age"`
	Capacity int `json:"capacity"`
	Forced   int `json:"forced"`
}
