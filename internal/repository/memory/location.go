package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/location"
)

type locationRepository struct {
	mu        sync.RWMutex
	locations []location.Location
}

// List implements location.LocationRepository.
func (r *locationRepository) List(ctx context.Context) ([]location.Location, error) {
	r.mu.RLock()
	locs := slices.Clone(r.locations)
	r.mu.RUnlock()

	if locs == nil {
		locs = []location.Location{}
	}
	slices.SortFunc(locs, func(a, b location.Location) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return locs, nil
}

// Create implements location.LocationRepository.
func (r *locationRepository) Create(ctx context.Context, loc location.Location) (location.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.locations {
		if existing.Name == loc.Name {
			return location.Location{}, location.ErrLocationNameExists
		}
	}

	if loc.ID == "" {
		loc.ID = newID()
	}
	if loc.AllowedRadiusMeters <= 0 {
		loc.AllowedRadiusMeters = location.DefaultRadiusMeters
	}
	loc.CreatedAt = time.Now()
	r.locations = append(r.locations, loc)

	return loc, nil
}

// Count implements location.LocationRepository.
func (r *locationRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.locations), nil
}

// NewLocationRepository returns a repository holding locs.
func NewLocationRepository(locs ...location.Location) location.LocationRepository {
	r := &locationRepository{}
	for _, loc := range locs {
		_, _ = r.Create(context.Background(), loc)
	}
	return r
}
