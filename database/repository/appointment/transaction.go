package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	businessRepo "agendai/database/repository/business"
	serviceRepo "agendai/database/repository/service"
	userRepo "agendai/database/repository/user"
	"agendai/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors for the resolution phase of the commit. The workflow
// engine maps these to a generic user-facing failure while keeping the
// booking session alive for a retry.
var (
	ErrUserNotFound     = errors.New("user not found for booking commit")
	ErrBusinessNotFound = errors.New("no business configured for booking commit")
)

// PostgresBookingCommitter persists a finished booking session as an
// appointment inside a single transaction.
type PostgresBookingCommitter struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingCommitter creates a committer over the given pool.
func NewPostgresBookingCommitter(pool *pgxpool.Pool) *PostgresBookingCommitter {
	return &PostgresBookingCommitter{pool: pool}
}

// Commit resolves the user, the default business, and the service, then
// inserts the appointment, all within one transaction. Any failure rolls
// the transaction back and leaves no partial rows behind.
func (c *PostgresBookingCommitter) Commit(ctx context.Context, session *models.BookingSession) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not begin booking transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := commitTx(ctx, tx, session)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("booking transaction failed: %w", err)
	}
	return appt, nil
}

// commitTx runs the repositories over the transaction handle so every
// read and write shares the same snapshot.
func commitTx(ctx context.Context, tx pgx.Tx, session *models.BookingSession) (*models.Appointment, error) {
	users := userRepo.NewPostgresUserRepo(tx)
	user, err := users.GetByExternalID(ctx, session.UserID)
	if errors.Is(err, userRepo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve user failed: %w", err)
	}
	if err := users.UpdateContact(ctx, user.ID, session.CustomerName, session.CustomerPhone, session.CustomerEmail); err != nil {
		return nil, fmt.Errorf("update user contact failed: %w", err)
	}

	business, err := businessRepo.NewPostgresBusinessRepo(tx).GetDefault(ctx)
	if errors.Is(err, businessRepo.ErrNotFound) {
		return nil, ErrBusinessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve business failed: %w", err)
	}

	service, err := serviceRepo.NewPostgresServiceRepo(tx).GetOrCreateByName(ctx, business.ID, session.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("resolve service failed: %w", err)
	}

	appt := &models.Appointment{
		UserID:     user.ID,
		BusinessID: business.ID,
		ServiceID:  service.ID,
		Date:       session.Date,
		Time:       session.Time,
		Status:     "confirmado",
		Protocol:   fmt.Sprintf("AGD-%s-%d", time.Now().Format("20060102150405"), user.ID),
		Notes: fmt.Sprintf("Servico: %s | Cliente: %s | Telefone: %s | Email: %s",
			session.ServiceName, session.CustomerName, session.CustomerPhone, session.CustomerEmail),
	}
	if err := NewPostgresAppointmentRepo(tx).Insert(ctx, appt); err != nil {
		return nil, fmt.Errorf("insert appointment failed: %w", err)
	}
	return appt, nil
}
