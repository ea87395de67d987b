package location

import (
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/pkg/geo"
)

// DefaultRadiusMeters applies to locations stored without an explicit radius.
const DefaultRadiusMeters = 100.0

// Location is a named geofence center. Locations are reference data and are
// never mutated by attendance operations.
type Location struct {
	ID                  string
	Name                string
	Latitude            float64
	Longitude           float64
	AllowedRadiusMeters float64
	CreatedAt           time.Time
}

func (l Location) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Radius returns the allowed radius, falling back to DefaultRadiusMeters.
func (l Location) Radius() float64 {
	if l.AllowedRadiusMeters <= 0 {
		return DefaultRadiusMeters
	}
	return l.AllowedRadiusMeters
}
