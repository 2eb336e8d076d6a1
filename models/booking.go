package models

import "time"

// BookingStep enumerates the states of the booking automaton.
type BookingStep string

const (
	StepInitial           BookingStep = "initial"
	StepCollectingService BookingStep = "collecting_service"
	StepCollectingDate    BookingStep = "collecting_date"
	StepCollectingTime    BookingStep = "collecting_time"
	StepCollectingName    BookingStep = "collecting_name"
	StepCollectingPhone   BookingStep = "collecting_phone"
	StepCollectingEmail   BookingStep = "collecting_email"
	StepConfirming        BookingStep = "confirming"
	StepCompleted         BookingStep = "completed"
	StepCancelled         BookingStep = "cancelled"
)

// BookingSession holds the data collected so far for one user's booking
// flow. It lives only in the workflow engine's store; the conversation
// state carries just a flag referencing it.
type BookingSession struct {
	UserID        string      `json:"userId"`
	ServiceID     string      `json:"serviceId,omitempty"`
	ServiceName   string      `json:"serviceName,omitempty"`
	Date          string      `json:"date,omitempty"` // "2006-01-02"
	Time          string      `json:"time,omitempty"` // "15:04"
	CustomerName  string      `json:"customerName,omitempty"`
	CustomerPhone string      `json:"customerPhone,omitempty"`
	CustomerEmail string      `json:"customerEmail,omitempty"`
	Step          BookingStep `json:"step"`
	Attempts      int         `json:"attempts"`
	Errors        []string    `json:"errors,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	LastActivity  time.Time   `json:"lastActivity"`
}

// Clone returns a deep copy. The engine's store hands out only clones;
// entries already in the store are never mutated in place.
func (b *BookingSession) Clone() *BookingSession {
	c := *b
	c.Errors = append([]string(nil), b.Errors...)
	return &c
}

// IsExpired reports whether the session idled past the given timeout.
func (b *BookingSession) IsExpired(timeout time.Duration) bool {
	return time.Since(b.LastActivity) > timeout
}

// AgeMinutes returns the absolute age of the session in minutes.
func (b *BookingSession) AgeMinutes() float64 {
	return time.Since(b.CreatedAt).Minutes()
}

// BookingReply is what the engine hands back to the messaging gateway:
// reply text plus optional quick-reply buttons.
type BookingReply struct {
	Text    string       `json:"text"`
	Buttons []QuickReply `json:"buttons,omitempty"`
}

// QuickReply is a structured response option attached to a reply.
type QuickReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
