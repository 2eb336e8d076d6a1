package booking

import (
	"sort"
	"sync"
	"time"

	"agendai/models"
)

// sessionStore is the engine's own keyed store for in-flight booking
// sessions. It stays process-local on purpose: only the conversation
// session store is distributed, and a crashed process losing half-typed
// bookings is acceptable where losing conversations is not.
type sessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.BookingSession

	// Per-user locks serialize ProcessBookingStep for one user so a
	// redelivered or reordered message cannot clobber a concurrent turn.
	userLocks sync.Map

	idleTimeout time.Duration
	maxAge      time.Duration
	capacity    int
}

func newSessionStore(idleTimeout, maxAge time.Duration, capacity int) *sessionStore {
	return &sessionStore{
		sessions:    make(map[string]*models.BookingSession),
		idleTimeout: idleTimeout,
		maxAge:      maxAge,
		capacity:    capacity,
	}
}

func (st *sessionStore) lockUser(userID string) *sync.Mutex {
	lock, _ := st.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// get hands out a private copy; stored entries are never mutated in
// place, so trim and stats can read them under st.mu without racing a
// turn in flight.
func (st *sessionStore) get(userID string) *models.BookingSession {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[userID]
	if !ok {
		return nil
	}
	return sess.Clone()
}

func (st *sessionStore) save(sess *models.BookingSession) {
	clone := sess.Clone()
	st.mu.Lock()
	st.sessions[clone.UserID] = clone
	st.mu.Unlock()
}

func (st *sessionStore) has(userID string) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	_, ok := st.sessions[userID]
	return ok
}

func (st *sessionStore) delete(userID string) {
	st.mu.Lock()
	delete(st.sessions, userID)
	st.mu.Unlock()
}

func (st *sessionStore) len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// trim applies the eviction policy: idle sessions first, then sessions
// past the absolute age ceiling, then, only when still over capacity,
// the oldest-created sessions beyond the cap, oldest first.
func (st *sessionStore) trim() CleanupResult {
	var res CleanupResult
	st.mu.Lock()
	defer st.mu.Unlock()

	for id, sess := range st.sessions {
		switch {
		case sess.IsExpired(st.idleTimeout):
			delete(st.sessions, id)
			res.Idle++
		case time.Since(sess.CreatedAt) > st.maxAge:
			delete(st.sessions, id)
			res.Age++
		}
	}

	if over := len(st.sessions) - st.capacity; over > 0 {
		type entry struct {
			id      string
			created time.Time
		}
		all := make([]entry, 0, len(st.sessions))
		for id, sess := range st.sessions {
			all = append(all, entry{id, sess.CreatedAt})
		}
		sort.Slice(all, func(i, j int) bool { return all[i].created.Before(all[j].created) })
		for _, e := range all[:over] {
			delete(st.sessions, e.id)
			res.Capacity++
		}
	}

	return res
}

// clear removes every session, returning how many were dropped.
func (st *sessionStore) clear() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := len(st.sessions)
	st.sessions = make(map[string]*models.BookingSession)
	return n
}

func (st *sessionStore) stats() MemoryStats {
	st.mu.RLock()
	defer st.mu.RUnlock()

	stats := MemoryStats{
		ActiveSessions: len(st.sessions),
		ByStep:         make(map[models.BookingStep]int),
	}
	for _, sess := range st.sessions {
		stats.ByStep[sess.Step]++
		if age := sess.AgeMinutes(); age > stats.OldestAgeMin {
			stats.OldestAgeMin = age
		}
	}
	return stats
}
