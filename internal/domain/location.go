package domain

// ReferenceLocation is a geofenced site attendance is checked against.
type ReferenceLocation struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Latitude           float64  `json:"latitude"`
	Longitude          float64  `json:"longitude"`
	RadiusMeters       float64  `json:"radius_meters"`
	RelaxedDepartments []string `json:"relaxed_departments"`
}
