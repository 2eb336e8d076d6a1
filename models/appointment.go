package models

import "time"

// Appointment represents a confirmed appointment row.
type Appointment struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	BusinessID int64     `json:"business_id"`
	ServiceID  int64     `json:"service_id"`
	Date       string    `json:"date"` // "2006-01-02"
	Time       string    `json:"time"` // "15:04"
	Status     string    `json:"status"`
	Protocol   string    `json:"protocol"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}
