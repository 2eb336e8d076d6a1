package serviceRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"agendai/database/repository"
	"agendai/models"

	"github.com/jackc/pgx/v5"
)

// ServiceRepository defines persistence operations for bookable services.
type ServiceRepository interface {
	GetOrCreateByName(ctx context.Context, businessID int64, name string) (*models.Service, error)
	ListByBusiness(ctx context.Context, businessID int64) ([]models.Service, error)
}

// PostgresServiceRepo implements ServiceRepository on pgx.
type PostgresServiceRepo struct {
	db repository.Querier
}

// NewPostgresServiceRepo creates a new ServiceRepository backed by the given querier.
func NewPostgresServiceRepo(db repository.Querier) *PostgresServiceRepo {
	return &PostgresServiceRepo{db: db}
}

// GetOrCreateByName resolves a service by name, creating it with defaults
// when the catalog does not have it yet.
func (r *PostgresServiceRepo) GetOrCreateByName(ctx context.Context, businessID int64, name string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.Service
	err := r.db.QueryRow(ctx,
		`SELECT id, business_id, name, duration_minutes, price FROM services WHERE business_id = $1 AND lower(name) = lower($2)`,
		businessID, name,
	).Scan(&s.ID, &s.BusinessID, &s.Name, &s.DurationMinutes, &s.Price)
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to fetch service %q: %w", name, err)
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO services (business_id, name) VALUES ($1, $2) RETURNING id, business_id, name, duration_minutes, price`,
		businessID, name,
	).Scan(&s.ID, &s.BusinessID, &s.Name, &s.DurationMinutes, &s.Price)
	if err != nil {
		return nil, fmt.Errorf("failed to create service %q: %w", name, err)
	}
	return &s, nil
}

// ListByBusiness returns the service catalog for a business.
func (r *PostgresServiceRepo) ListByBusiness(ctx context.Context, businessID int64) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT id, business_id, name, duration_minutes, price FROM services WHERE business_id = $1 ORDER BY name`,
		businessID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		var s models.Service
		if err := rows.Scan(&s.ID, &s.BusinessID, &s.Name, &s.DurationMinutes, &s.Price); err != nil {
			return nil, fmt.Errorf("failed to scan service row: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
