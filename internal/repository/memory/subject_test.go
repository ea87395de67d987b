package memory

import (
	"context"
	"testing"

	"github.com/campusgeo/attendance-backend-go/internal/domain/location"
	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectRepository_UniqueKeys(t *testing.T) {
	repo := NewSubjectRepository()
	ctx := context.Background()

	s, err := repo.Create(ctx, subject.Subject{Name: "Asha", Email: "Asha@Uni.edu", Role: subject.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, "asha@uni.edu", s.Email)

	_, err = repo.Create(ctx, subject.Subject{Name: "Other", Email: "asha@uni.edu", Role: subject.RoleStudent})
	assert.ErrorIs(t, err, subject.ErrSubjectEmailExists)

	_, err = repo.Create(ctx, subject.Subject{Name: "asha", Role: subject.RoleStudent})
	assert.ErrorIs(t, err, subject.ErrSubjectNameExists)

	_, err = repo.Create(ctx, subject.Subject{Name: "asha", Role: subject.RoleFaculty})
	assert.NoError(t, err)

	got, err := repo.GetByName(ctx, "ASHA", subject.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, subject.ErrSubjectNotFound)
}

func TestLocationRepository_SortedAndDefaulted(t *testing.T) {
	repo := NewLocationRepository(
		location.Location{Name: "Library", Latitude: 1, Longitude: 1},
		location.Location{Name: "Canteen", Latitude: 2, Longitude: 2, AllowedRadiusMeters: 50},
	)
	ctx := context.Background()

	locs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "Canteen", locs[0].Name)
	assert.Equal(t, location.DefaultRadiusMeters, locs[1].AllowedRadiusMeters)

	_, err = repo.Create(ctx, location.Location{Name: "Library"})
	assert.ErrorIs(t, err, location.ErrLocationNameExists)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
