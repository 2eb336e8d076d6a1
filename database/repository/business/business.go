package businessRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agendai/database/repository"
	"agendai/models"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when no business row exists yet.
var ErrNotFound = errors.New("business not found")

// BusinessRepository defines persistence operations for the establishment.
type BusinessRepository interface {
	GetDefault(ctx context.Context) (*models.Business, error)
	Create(ctx context.Context, business *models.Business) error
}

// PostgresBusinessRepo implements BusinessRepository on pgx.
type PostgresBusinessRepo struct {
	db repository.Querier
}

// NewPostgresBusinessRepo creates a new BusinessRepository backed by the given querier.
func NewPostgresBusinessRepo(db repository.Querier) *PostgresBusinessRepo {
	return &PostgresBusinessRepo{db: db}
}

// GetDefault returns the first business on record. Single-tenant
// deployments only ever have one.
func (r *PostgresBusinessRepo) GetDefault(ctx context.Context) (*models.Business, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Business
	err := r.db.QueryRow(ctx,
		`SELECT id, name, phone, address, created_at FROM businesses ORDER BY id LIMIT 1`,
	).Scan(&b.ID, &b.Name, &b.Phone, &b.Address, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch default business: %w", err)
	}
	return &b, nil
}

// Create inserts a new business and fills in its generated id.
func (r *PostgresBusinessRepo) Create(ctx context.Context, business *models.Business) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx,
		`INSERT INTO businesses (name, phone, address) VALUES ($1, $2, $3) RETURNING id, created_at`,
		business.Name, business.Phone, business.Address,
	).Scan(&business.ID, &business.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}
	return nil
}
