package fixtures

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campusgeo/attendance-backend-go/internal/domain/location"
)

// DefaultCampusRadius is the allowed radius of the seeded campus location.
const DefaultCampusRadius = 500.0

// DefaultLocations are the authorized campus locations seeded into an empty
// location table. A non-positive radius uses DefaultCampusRadius.
func DefaultLocations(radius float64) []location.Location {
	if radius <= 0 {
		radius = DefaultCampusRadius
	}
	return []location.Location{
		{
			Name:                "Presidency University, Bengaluru",
			Latitude:            12.9338,
			Longitude:           77.6929,
			AllowedRadiusMeters: radius,
		},
	}
}

// SeedLocations creates locs when repo holds no locations yet. It reports how
// many were created.
func SeedLocations(ctx context.Context, repo location.LocationRepository, locs []location.Location) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count locations: %w", err)
	}
	if count > 0 {
		slog.Debug("Locations already present, skipping seed", "count", count)
		return 0, nil
	}

	created := 0
	for _, loc := range locs {
		if _, err := repo.Create(ctx, loc); err != nil {
			return created, fmt.Errorf("seed location %q: %w", loc.Name, err)
		}
		created++
	}

	slog.Info("Seeded default locations", "count", created)
	return created, nil
}
