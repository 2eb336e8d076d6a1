package models

import "time"

// Business represents the establishment appointments are booked against.
// Single-tenant deployments carry exactly one row; lookups take the first.
type Business struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}
