package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/location"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// LocationsKey holds the JSON-encoded list of authorized locations.
const LocationsKey = "attendance:locations:all"

const DefaultLocationTTL = 10 * time.Minute

type cachedLocation struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Latitude            float64   `json:"latitude"`
	Longitude           float64   `json:"longitude"`
	AllowedRadiusMeters float64   `json:"allowed_radius_meters"`
	CreatedAt           time.Time `json:"created_at"`
}

// LocationCache is a read-through Redis cache in front of a
// location.LocationRepository. Redis failures degrade to the backing
// repository; they are logged and never returned.
type LocationCache struct {
	repo location.LocationRepository
	rdb  redis.Cmdable
	ttl  time.Duration
	sf   singleflight.Group
}

// List implements location.LocationRepository.
func (c *LocationCache) List(ctx context.Context) ([]location.Location, error) {
	cached, err := c.rdb.Get(ctx, LocationsKey).Result()
	switch {
	case err == nil:
		var entries []cachedLocation
		if err := json.Unmarshal([]byte(cached), &entries); err == nil {
			return fromCache(entries), nil
		}
		slog.Warn("discarding malformed location cache entry", "key", LocationsKey)
	case !errors.Is(err, redis.Nil):
		slog.Warn("location cache read failed", "key", LocationsKey, "error", err)
	}

	// Shared by every waiting caller, so one caller's cancellation must not fail the rest.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.sf.Do(LocationsKey, func() (interface{}, error) {
		return c.load(loadCtx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]location.Location), nil
}

// Create implements location.LocationRepository and drops the cached list.
func (c *LocationCache) Create(ctx context.Context, loc location.Location) (location.Location, error) {
	created, err := c.repo.Create(ctx, loc)
	if err != nil {
		return location.Location{}, err
	}
	c.Invalidate(ctx)
	return created, nil
}

// Count implements location.LocationRepository.
func (c *LocationCache) Count(ctx context.Context) (int, error) {
	return c.repo.Count(ctx)
}

// Refresh reloads the locations from the repository and rewrites the cache.
func (c *LocationCache) Refresh(ctx context.Context) error {
	_, err := c.load(ctx)
	return err
}

// Invalidate removes the cached list.
func (c *LocationCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, LocationsKey).Err(); err != nil {
		slog.Warn("failed to invalidate location cache", "key", LocationsKey, "error", err)
	}
}

func (c *LocationCache) load(ctx context.Context) ([]location.Location, error) {
	locs, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(toCache(locs))
	if err != nil {
		return locs, nil
	}
	if err := c.rdb.Set(ctx, LocationsKey, data, c.ttl).Err(); err != nil {
		slog.Warn("location cache write failed", "key", LocationsKey, "error", err)
	}
	return locs, nil
}

func toCache(locs []location.Location) []cachedLocation {
	entries := make([]cachedLocation, 0, len(locs))
	for _, l := range locs {
		entries = append(entries, cachedLocation{
			ID:                  l.ID,
			Name:                l.Name,
			Latitude:            l.Latitude,
			Longitude:           l.Longitude,
			AllowedRadiusMeters: l.AllowedRadiusMeters,
			CreatedAt:           l.CreatedAt,
		})
	}
	return entries
}

func fromCache(entries []cachedLocation) []location.Location {
	locs := make([]location.Location, 0, len(entries))
	for _, e := range entries {
		locs = append(locs, location.Location{
			ID:                  e.ID,
			Name:                e.Name,
			Latitude:            e.Latitude,
			Longitude:           e.Longitude,
			AllowedRadiusMeters: e.AllowedRadiusMeters,
			CreatedAt:           e.CreatedAt,
		})
	}
	return locs
}

// NewLocationCache wraps repo with a Redis cache. A non-positive ttl uses
// DefaultLocationTTL.
func NewLocationCache(repo location.LocationRepository, rdb redis.Cmdable, ttl time.Duration) *LocationCache {
	if ttl <= 0 {
		ttl = DefaultLocationTTL
	}
	return &LocationCache{repo: repo, rdb: rdb, ttl: ttl}
}
