package models

import (
	"time"

	"github.com/google/uuid"
)

// ConversationStatus tracks where a user's conversation currently is.
type ConversationStatus string

const (
	StatusInactive       ConversationStatus = "inactive"
	StatusActive         ConversationStatus = "active"
	StatusWaitingInput   ConversationStatus = "waiting_input"
	StatusProcessing     ConversationStatus = "processing"
	StatusBookingFlow    ConversationStatus = "booking_flow"
	StatusHandoffPending ConversationStatus = "handoff_pending"
	StatusCompleted      ConversationStatus = "completed"
	StatusExpired        ConversationStatus = "expired"
)

// ConversationMessage is a single turn stored in the bounded history.
type ConversationMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationState is the durable record of one user's multi-turn
// interaction. One instance exists per user id; it is owned exclusively
// by the conversation session store.
type ConversationState struct {
	UserID          string                `json:"userId"`
	Phone           string                `json:"phone,omitempty"`
	Status          ConversationStatus    `json:"status"`
	StartedAt       time.Time             `json:"startedAt"`
	LastActivity    time.Time             `json:"lastActivity"`
	Messages        []ConversationMessage `json:"messages"`
	BookingActive   bool                  `json:"bookingActive"`
	UserContext     map[string]string     `json:"userContext,omitempty"`
	TimeoutMinutes  int                   `json:"timeoutMinutes"`
	StrategyHistory []string              `json:"strategyHistory,omitempty"`
	SessionID       string                `json:"sessionId"`
}

// NewConversationState returns the default state handed out for a user id
// that has never been seen (or whose previous state expired).
func NewConversationState(userID string, timeoutMinutes int) *ConversationState {
	now := time.Now()
	return &ConversationState{
		UserID:         userID,
		SessionID:      uuid.NewString(),
		Status:         StatusInactive,
		StartedAt:      now,
		LastActivity:   now,
		Messages:       []ConversationMessage{},
		UserContext:    map[string]string{},
		TimeoutMinutes: timeoutMinutes,
	}
}

// Clone returns a deep copy. The session store hands out and keeps only
// clones so concurrent turns for one user never share a state object.
func (s *ConversationState) Clone() *ConversationState {
	c := *s
	c.Messages = append([]ConversationMessage(nil), s.Messages...)
	c.StrategyHistory = append([]string(nil), s.StrategyHistory...)
	if s.UserContext != nil {
		c.UserContext = make(map[string]string, len(s.UserContext))
		for k, v := range s.UserContext {
			c.UserContext[k] = v
		}
	}
	return &c
}

// IsExpired reports whether the state outlived its timeout. Elapsed time
// exactly equal to the timeout is NOT expired.
func (s *ConversationState) IsExpired() bool {
	if s.TimeoutMinutes <= 0 {
		return false
	}
	return time.Since(s.LastActivity) > time.Duration(s.TimeoutMinutes)*time.Minute
}

// Touch refreshes LastActivity, keeping it monotonically non-decreasing.
func (s *ConversationState) Touch() {
	if now := time.Now(); now.After(s.LastActivity) {
		s.LastActivity = now
	}
}

// AppendMessage adds a turn to the history, dropping the oldest entries
// beyond limit. The first message flips an inactive conversation to active.
func (s *ConversationState) AppendMessage(msg ConversationMessage, limit int) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	s.Messages = append(s.Messages, msg)
	if limit > 0 && len(s.Messages) > limit {
		s.Messages = s.Messages[len(s.Messages)-limit:]
	}
	if s.Status == StatusInactive {
		s.Status = StatusActive
	}
	s.Touch()
}
