package location

import (
	"cmp"
	"slices"

	"github.com/campusgeo/attendance-backend-go/internal/pkg/geo"
)

// ValidationResult is the outcome of checking one coordinate against one location.
type ValidationResult struct {
	Location       Location
	DistanceMeters float64
	Accepted       bool
}

// Validate reports whether coord lies inside loc's geofence. A point exactly on
// the radius is accepted.
func Validate(coord geo.Coordinate, loc Location) ValidationResult {
	d := geo.Haversine(coord, loc.Coordinate())
	return ValidationResult{
		Location:       loc,
		DistanceMeters: d,
		Accepted:       d <= loc.Radius(),
	}
}

// Rank validates coord against every location and orders the results by
// ascending distance, breaking ties by name.
func Rank(coord geo.Coordinate, locs []Location) []ValidationResult {
	results := make([]ValidationResult, 0, len(locs))
	for _, loc := range locs {
		results = append(results, Validate(coord, loc))
	}
	slices.SortStableFunc(results, func(a, b ValidationResult) int {
		if c := cmp.Compare(a.DistanceMeters, b.DistanceMeters); c != 0 {
			return c
		}
		return cmp.Compare(a.Location.Name, b.Location.Name)
	})
	return results
}

// Nearest returns the closest location to coord. ok is false when locs is empty.
func Nearest(coord geo.Coordinate, locs []Location) (result ValidationResult, ok bool) {
	ranked := Rank(coord, locs)
	if len(ranked) == 0 {
		return ValidationResult{}, false
	}
	return ranked[0], true
}
