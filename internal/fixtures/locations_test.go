package fixtures

import (
	"context"
	"testing"

	"github.com/campusgeo/attendance-backend-go/internal/domain/location"
	"github.com/campusgeo/attendance-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedLocations(t *testing.T) {
	ctx := context.Background()

	t.Run("Seeds an empty repository", func(t *testing.T) {
		repo := memory.NewLocationRepository()

		n, err := SeedLocations(ctx, repo, DefaultLocations(0))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		locs, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, locs, 1)
		assert.Equal(t, "Presidency University, Bengaluru", locs[0].Name)
		assert.Equal(t, 500.0, locs[0].Radius())
	})

	t.Run("Custom radius", func(t *testing.T) {
		repo := memory.NewLocationRepository()
		_, err := SeedLocations(ctx, repo, DefaultLocations(250))
		require.NoError(t, err)

		locs, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, 250.0, locs[0].AllowedRadiusMeters)
	})

	t.Run("Leaves existing locations alone", func(t *testing.T) {
		repo := memory.NewLocationRepository(location.Location{ID: "l1", Name: "Office", Latitude: 1, Longitude: 1})

		n, err := SeedLocations(ctx, repo, DefaultLocations(0))
		require.NoError(t, err)
		assert.Zero(t, n)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Idempotent", func(t *testing.T) {
		repo := memory.NewLocationRepository()
		_, err := SeedLocations(ctx, repo, DefaultLocations(0))
		require.NoError(t, err)

		n, err := SeedLocations(ctx, repo, DefaultLocations(0))
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
