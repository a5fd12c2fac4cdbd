package geofence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

func office() *domain.ReferenceLocation {
	return &domain.ReferenceLocation{
		ID:                 1,
		Name:               "Head office",
		Latitude:           -6.200000,
		Longitude:          106.816666,
		RadiusMeters:       100,
		RelaxedDepartments: []string{"marketing"},
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		delta                  float64
	}{
		{"same point", -6.2, 106.8, -6.2, 106.8, 0, 1e-9},
		// one degree of longitude on the equator
		{"one degree on equator", 0, 0, 0, 1, EarthRadiusMeters * math.Pi / 180, 1e-6},
		// Jakarta Monas to Bandung Gedung Sate, ~119 km
		{"jakarta to bandung", -6.175392, 106.827153, -6.902481, 107.618810, 119_100, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Distance(-6.2, 106.8, -6.3, 106.9)
	b := Distance(-6.3, 106.9, -6.2, 106.8)
	assert.InDelta(t, a, b, 1e-9)
}

func TestEvaluate_RadiusBoundary(t *testing.T) {
	ref := office()
	lat, lon := -6.2005, 106.8170
	dist := Distance(lat, lon, ref.Latitude, ref.Longitude)

	ref.RadiusMeters = dist
	assert.True(t, WithinBounds(lat, lon, ref, "engineering"), "point exactly on the radius must pass")

	ref.RadiusMeters = dist - 1e-6
	assert.False(t, WithinBounds(lat, lon, ref, "engineering"), "radius + epsilon must fail")
}

func TestEvaluate_FarAway(t *testing.T) {
	ref := office()

	// ~10 km north
	res := Evaluate(ref.Latitude+0.09, ref.Longitude, ref, "finance")

	assert.False(t, res.Within)
	assert.False(t, res.Bypassed)
	assert.InDelta(t, 10_000, res.DistanceMeters, 100)
}

func TestEvaluate_RelaxedDepartment(t *testing.T) {
	ref := office()

	for _, dept := range []string{"marketing", "Marketing", " MARKETING "} {
		t.Run(dept, func(t *testing.T) {
			res := Evaluate(10, 10, ref, dept)
			assert.True(t, res.Within)
			assert.True(t, res.Bypassed)
			assert.Greater(t, res.DistanceMeters, 1_000_000.0)
		})
	}
}

func TestEvaluate_NoRelaxedDepartments(t *testing.T) {
	ref := office()
	ref.RelaxedDepartments = nil

	assert.False(t, WithinBounds(10, 10, ref, "marketing"))
}

func TestIsRelaxed_EmptyDepartment(t *testing.T) {
	ref := office()
	ref.RelaxedDepartments = []string{""}

	assert.False(t, IsRelaxed(ref, ""))
	assert.False(t, IsRelaxed(ref, "   "))
}
