// Package geofence decides whether a reported position is close enough to
// a reference location.
package geofence

import (
	"math"
	"strings"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6_371_000.0

// Result describes a single geofence evaluation.
type Result struct {
	DistanceMeters float64
	Bypassed       bool
	Within         bool
}

// Distance returns the great-circle distance in meters between two points
// given in decimal degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// IsRelaxed reports whether department is exempt from the radius at ref.
func IsRelaxed(ref *domain.ReferenceLocation, department string) bool {
	dept := strings.TrimSpace(department)
	if dept == "" {
		return false
	}
	for _, d := range ref.RelaxedDepartments {
		if strings.EqualFold(strings.TrimSpace(d), dept) {
			return true
		}
	}
	return false
}

// Evaluate measures the position against ref. A point exactly on the
// radius is inside.
func Evaluate(lat, lon float64, ref *domain.ReferenceLocation, department string) Result {
	dist := Distance(lat, lon, ref.Latitude, ref.Longitude)

	if IsRelaxed(ref, department) {
		return Result{DistanceMeters: dist, Bypassed: true, Within: true}
	}

	return Result{DistanceMeters: dist, Within: dist <= ref.RadiusMeters}
}

// WithinBounds reports whether a user of department standing at lat/lon may
// submit attendance against ref.
func WithinBounds(lat, lon float64, ref *domain.ReferenceLocation, department string) bool {
	return Evaluate(lat, lon, ref, department).Within
}
