package userRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agendai/database/repository"
	"agendai/models"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when no user matches the given external id.
var ErrNotFound = errors.New("user not found")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateContact(ctx context.Context, id int64, name, phone, email string) error
}

// PostgresUserRepo implements UserRepository on pgx.
type PostgresUserRepo struct {
	db repository.Querier
}

// NewPostgresUserRepo creates a new UserRepository backed by the given querier.
func NewPostgresUserRepo(db repository.Querier) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// newContext creates a context with the given timeout.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

// GetByExternalID retrieves a user by the messaging channel's identifier.
func (r *PostgresUserRepo) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var u models.User
	err := r.db.QueryRow(ctx,
		`SELECT id, external_id, name, phone, email, created_at FROM users WHERE external_id = $1`,
		externalID,
	).Scan(&u.ID, &u.ExternalID, &u.Name, &u.Phone, &u.Email, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user with external id %s: %w", externalID, err)
	}
	return &u, nil
}

// Create inserts a new user and fills in its generated id.
func (r *PostgresUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx,
		`INSERT INTO users (external_id, name, phone, email) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		user.ExternalID, user.Name, user.Phone, user.Email,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateContact refreshes the contact fields collected during a booking.
func (r *PostgresUserRepo) UpdateContact(ctx context.Context, id int64, name, phone, email string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx,
		`UPDATE users SET name = $2, phone = $3, email = $4 WHERE id = $1`,
		id, name, phone, email,
	)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return nil
}
