package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/location"
	"github.com/campusgeo/attendance-backend-go/internal/repository/cache"
	"github.com/campusgeo/attendance-backend-go/internal/repository/memory"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachedJSON(t *testing.T, locs []location.Location) string {
	t.Helper()
	type entry struct {
		ID                  string    `json:"id"`
		Name                string    `json:"name"`
		Latitude            float64   `json:"latitude"`
		Longitude           float64   `json:"longitude"`
		AllowedRadiusMeters float64   `json:"allowed_radius_meters"`
		CreatedAt           time.Time `json:"created_at"`
	}
	entries := make([]entry, 0, len(locs))
	for _, l := range locs {
		entries = append(entries, entry{l.ID, l.Name, l.Latitude, l.Longitude, l.AllowedRadiusMeters, l.CreatedAt})
	}
	b, err := json.Marshal(entries)
	require.NoError(t, err)
	return string(b)
}

func TestLocationCache_List(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips the repository", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		repo := memory.NewLocationRepository()
		c := cache.NewLocationCache(repo, rdb, time.Minute)

		want := []location.Location{{ID: "loc-1", Name: "Office", Latitude: 12.9716, Longitude: 77.5946, AllowedRadiusMeters: 100}}
		mock.ExpectGet(cache.LocationsKey).SetVal(cachedJSON(t, want))

		got, err := c.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache miss loads and stores", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		repo := memory.NewLocationRepository(location.Location{Name: "Office", Latitude: 12.9716, Longitude: 77.5946})
		c := cache.NewLocationCache(repo, rdb, time.Minute)

		locs, err := repo.List(ctx)
		require.NoError(t, err)

		mock.ExpectGet(cache.LocationsKey).RedisNil()
		mock.ExpectSet(cache.LocationsKey, []byte(cachedJSON(t, locs)), time.Minute).SetVal("OK")

		got, err := c.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Office", got[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis failure falls back to the repository", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		repo := memory.NewLocationRepository(location.Location{Name: "Field", Latitude: 1, Longitude: 1})
		c := cache.NewLocationCache(repo, rdb, time.Minute)

		mock.ExpectGet(cache.LocationsKey).SetErr(errors.New("connection refused"))
		mock.Regexp().ExpectSet(cache.LocationsKey, `.*`, time.Minute).SetErr(errors.New("connection refused"))

		got, err := c.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Field", got[0].Name)
	})
}

func TestLocationCache_CreateInvalidates(t *testing.T) {
	ctx := context.Background()
	rdb, mock := redismock.NewClientMock()
	c := cache.NewLocationCache(memory.NewLocationRepository(), rdb, 0)

	mock.ExpectDel(cache.LocationsKey).SetVal(1)

	created, err := c.Create(ctx, location.Location{Name: "Library", Latitude: 2, Longitude: 2})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())

	n, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// cancellingRepository cancels the first caller mid-load and records what the
// load observed.
type cancellingRepository struct {
	location.LocationRepository
	cancel  context.CancelFunc
	loadErr error
}

func (r *cancellingRepository) List(ctx context.Context) ([]location.Location, error) {
	r.cancel()
	r.loadErr = ctx.Err()
	return r.LocationRepository.List(ctx)
}

func TestLocationCache_LoadSurvivesCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, mock := redismock.NewClientMock()
	repo := &cancellingRepository{
		LocationRepository: memory.NewLocationRepository(location.Location{Name: "Office", Latitude: 12.9716, Longitude: 77.5946}),
		cancel:             cancel,
	}
	c := cache.NewLocationCache(repo, rdb, time.Minute)

	mock.ExpectGet(cache.LocationsKey).RedisNil()
	mock.Regexp().ExpectSet(cache.LocationsKey, `.*`, time.Minute).SetVal("OK")

	got, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NoError(t, repo.loadErr)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
