package models

// Service represents a bookable service offered by the business.
type Service struct {
	ID              int64   `json:"id"`
	BusinessID      int64   `json:"business_id"`
	Name            string  `json:"name"` // e.g., "Corte Masculino"
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}
