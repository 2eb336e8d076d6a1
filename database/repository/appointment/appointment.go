package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"agendai/database/repository"
	"agendai/models"
)

// AppointmentRepository defines persistence operations for appointments.
type AppointmentRepository interface {
	Insert(ctx context.Context, appt *models.Appointment) error
	ListByUser(ctx context.Context, userID int64) ([]models.Appointment, error)
}

// PostgresAppointmentRepo implements AppointmentRepository on pgx.
type PostgresAppointmentRepo struct {
	db repository.Querier
}

// NewPostgresAppointmentRepo creates a new AppointmentRepository backed by the given querier.
func NewPostgresAppointmentRepo(db repository.Querier) *PostgresAppointmentRepo {
	return &PostgresAppointmentRepo{db: db}
}

// Insert persists an appointment row and fills in its generated id.
func (r *PostgresAppointmentRepo) Insert(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx,
		`INSERT INTO appointments (user_id, business_id, service_id, date, time, status, protocol, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`,
		appt.UserID, appt.BusinessID, appt.ServiceID, appt.Date, appt.Time, appt.Status, appt.Protocol, appt.Notes,
	).Scan(&appt.ID, &appt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

// ListByUser returns a user's appointments, newest first.
func (r *PostgresAppointmentRepo) ListByUser(ctx context.Context, userID int64) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, business_id, service_id, date, time, status, protocol, notes, created_at
		 FROM appointments WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments for user %d: %w", userID, err)
	}
	defer rows.Close()

	var appts []models.Appointment
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.UserID, &a.BusinessID, &a.ServiceID, &a.Date, &a.Time,
			&a.Status, &a.Protocol, &a.Notes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan appointment row: %w", err)
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}
