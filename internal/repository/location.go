package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type LocationRepository struct {
	pool PgxPool
}

func NewLocationRepository(pool PgxPool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

// GetReference returns the reference location: the first configured one.
func (r *LocationRepository) GetReference(ctx context.Context) (*domain.ReferenceLocation, error) {
	query := `
		SELECT id, name, latitude, longitude, radius_meters, relaxed_departments
		FROM attendance_locations
		ORDER BY id
		LIMIT 1
	`

	var loc domain.ReferenceLocation
	err := r.pool.QueryRow(ctx, query).Scan(
		&loc.ID,
		&loc.Name,
		&loc.Latitude,
		&loc.Longitude,
		&loc.RadiusMeters,
		&loc.RelaxedDepartments,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reference location: %w", err)
	}

	return &loc, nil
}
