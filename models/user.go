package models

import "time"

// User represents a platform user, keyed by the external id handed in by
// the messaging gateway (the chat channel's user identifier).
type User struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
}
