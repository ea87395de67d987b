package postgresql

import (
	"context"
	"fmt"

	"github.com/campusgeo/attendance-backend-go/internal/domain/location"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

type locationRepository struct {
	db *database.DB
}

// List implements location.LocationRepository.
func (r *locationRepository) List(ctx context.Context) ([]location.Location, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, latitude, longitude, allowed_radius_meters, created_at
		FROM locations
		ORDER BY name ASC`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	locs := []location.Location{}
	for rows.Next() {
		var l location.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Latitude, &l.Longitude, &l.AllowedRadiusMeters, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locs = append(locs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	return locs, nil
}

// Create implements location.LocationRepository.
func (r *locationRepository) Create(ctx context.Context, loc location.Location) (location.Location, error) {
	q := GetQuerier(ctx, r.db)

	if loc.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return location.Location{}, fmt.Errorf("generate location id: %w", err)
		}
		loc.ID = id.String()
	}

	query := `
		INSERT INTO locations (id, name, latitude, longitude, allowed_radius_meters)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := q.QueryRow(ctx, query, loc.ID, loc.Name, loc.Latitude, loc.Longitude, loc.Radius()).Scan(&loc.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return location.Location{}, location.ErrLocationNameExists
		}
		return location.Location{}, fmt.Errorf("failed to create location: %w", err)
	}
	loc.AllowedRadiusMeters = loc.Radius()

	return loc, nil
}

// Count implements location.LocationRepository.
func (r *locationRepository) Count(ctx context.Context) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM locations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count locations: %w", err)
	}
	return count, nil
}

func NewLocationRepository(db *database.DB) location.LocationRepository {
	return &locationRepository{db: db}
}
