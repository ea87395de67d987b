package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine_IdenticalPointsIsZero(t *testing.T) {
	p := Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	assert.Equal(t, 0.0, Haversine(p, p))
}

func TestHaversine_Symmetric(t *testing.T) {
	cases := []struct {
		a, b Coordinate
	}{
		{Coordinate{12.9716, 77.5946}, Coordinate{12.9338, 77.6929}},
		{Coordinate{-33.8688, 151.2093}, Coordinate{51.5074, -0.1278}},
		{Coordinate{0, 179.9}, Coordinate{0, -179.9}},
	}
	for _, c := range cases {
		assert.InDelta(t, Haversine(c.a, c.b), Haversine(c.b, c.a), 1e-6)
	}
}

func TestHaversine_KnownDistance(t *testing.T) {
	// One degree of latitude on the mean sphere.
	d := Haversine(Coordinate{0, 0}, Coordinate{1, 0})
	assert.InDelta(t, 111194.9, d, 0.5)
}

func TestOffset_RoundTripsDistance(t *testing.T) {
	origin := Coordinate{Latitude: 12.9716, Longitude: 77.5946}
	for _, dist := range []float64{1, 50, 100, 150, 900} {
		for _, bearing := range []float64{0, 45, 90, 180, 270} {
			p := Offset(origin, dist, bearing)
			assert.InDelta(t, dist, Haversine(origin, p), 1e-3, "dist=%v bearing=%v", dist, bearing)
		}
	}
}

func TestCoordinate_Valid(t *testing.T) {
	assert.True(t, Coordinate{90, 180}.Valid())
	assert.True(t, Coordinate{-90, -180}.Valid())
	assert.False(t, Coordinate{90.1, 0}.Valid())
	assert.False(t, Coordinate{0, -180.5}.Valid())
}
