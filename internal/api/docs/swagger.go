package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// RegisterFaceResponse is returned after a successful enrollment
type RegisterFaceResponse struct {
	Success  bool     `json:"success" example:"true"`
	Message  string   `json:"message" example:"Face registration successful"`
	PhotoURL []string `json:"photo_url" example:"http://localhost:3000/uploads/face_registration/emp-001_face1.jpg"`
}

type RegistrationStatusResponse struct {
	Success    bool     `json:"success" example:"true"`
	Registered bool     `json:"registered" example:"true"`
	PhotoURL   []string `json:"photo_url"`
	UpdatedAt  string   `json:"updated_at" example:"2024-01-01T08:00:00Z"`
}

type AttendanceResponse struct {
	Success    bool    `json:"success" example:"true"`
	Message    string  `json:"message" example:"Check-in successful"`
	AbsenID    string  `json:"absen_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Similarity float64 `json:"similarity" example:"0.91"`
}

type AttendanceRecordData struct {
	ID           string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID       string  `json:"user_id" example:"emp-001"`
	Date         string  `json:"date" example:"2024-01-01"`
	Time         string  `json:"time" example:"08:01:12"`
	Type         string  `json:"type" example:"CHECK_IN"`
	Latitude     float64 `json:"latitude" example:"-6.2"`
	Longitude    float64 `json:"longitude" example:"106.816666"`
	Similarity   float64 `json:"similarity" example:"0.91"`
	PhotoURL     string  `json:"photo_url" example:"http://localhost:3000/uploads/absen/emp-001_CHECK_IN_2024-01-01.jpg"`
	LocationName string  `json:"location_name,omitempty" example:"Head Office"`
	CreatedAt    string  `json:"created_at" example:"2024-01-01T08:01:13Z"`
}

type AttendanceHistoryResponse struct {
	Success bool                   `json:"success" example:"true"`
	Records []AttendanceRecordData `json:"records"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"Invalid request"`
	Code    string `json:"code" example:"INVALID_REQUEST"`
}

type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

func errorReturn(code, msg, status, desc string) response.Response {
	return response.New(ErrorResponse{Error: msg, Code: code}, status, desc)
}

var (
	unauthorized = errorReturn("UNAUTHORIZED", "Invalid or missing API key", "401", "Unauthorized")
	rateLimited  = errorReturn("RATE_LIMIT_EXCEEDED", "Rate limit exceeded, please try again later", "429", "Too Many Requests")
	internal     = errorReturn("INTERNAL_ERROR", "An unexpected error occurred", "500", "Internal Server Error")
)

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Presenca Attendance API",
		Version:     "v1.0.0",
		Description: "Face-verified attendance: enrollment with three photos and geofenced check-in/check-out",
		Host:        "localhost:3000",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /register-face
		endpoint.New(
			endpoint.POST,
			"/register-face",
			endpoint.WithTags("Registration"),
			endpoint.WithSummary("Register a user's face"),
			endpoint.WithDescription("Enrolls exactly three photos. The stored reference is the mean of the three embeddings and replaces any previous one."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("user_id", parameter.Form, parameter.WithDescription("Employee identifier")),
				parameter.FileParam("photo0", parameter.WithDescription("First face photo")),
				parameter.FileParam("photo1", parameter.WithDescription("Second face photo")),
				parameter.FileParam("photo2", parameter.WithDescription("Third face photo")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RegisterFaceResponse{}, "200", "Face registered"),
			}),
			endpoint.WithErrors([]response.Response{
				errorReturn("INVALID_REQUEST", "3 valid faces are required", "400", "Bad Request"),
				errorReturn("NO_FACE_DETECTED", "no face detected in photo1", "400", "Bad Request"),
				unauthorized,
				rateLimited,
				internal,
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /register-face/:user_id
		endpoint.New(
			endpoint.GET,
			"/register-face/{user_id}",
			endpoint.WithTags("Registration"),
			endpoint.WithSummary("Get a user's registration status"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("user_id", parameter.Path, parameter.WithDescription("Employee identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RegistrationStatusResponse{}, "200", "Registration status"),
			}),
			endpoint.WithErrors([]response.Response{
				unauthorized,
				errorReturn("USER_NOT_FOUND", "User not found", "404", "Not Found"),
				internal,
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// POST /absen
		endpoint.New(
			endpoint.POST,
			"/absen",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Submit a check-in or check-out"),
			endpoint.WithDescription("Runs the location, face and duplicate checks in order and commits the record when all pass."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("user_id", parameter.Form, parameter.WithDescription("Employee identifier")),
				parameter.StrParam("type", parameter.Form, parameter.WithDescription("CHECK_IN or CHECK_OUT")),
				parameter.StrParam("date", parameter.Form, parameter.WithDescription("Local date (YYYY-MM-DD)")),
				parameter.StrParam("time", parameter.Form, parameter.WithDescription("Local time as sent by the device")),
				parameter.StrParam("latitude", parameter.Form, parameter.WithDescription("Decimal degrees")),
				parameter.StrParam("longitude", parameter.Form, parameter.WithDescription("Decimal degrees")),
				parameter.StrParam("location_name", parameter.Form, parameter.WithDescription("Optional place label")),
				parameter.FileParam("photo", parameter.WithDescription("Selfie taken at submission time")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceResponse{}, "200", "Attendance recorded"),
			}),
			endpoint.WithErrors([]response.Response{
				errorReturn("LOCATION_REJECTED", "You are outside the allowed attendance area", "400", "Bad Request"),
				errorReturn("FACE_MISMATCH", "Face does not match the registered face", "401", "Unauthorized"),
				errorReturn("FACE_NOT_REGISTERED", "Face is not registered for this user", "404", "Not Found"),
				errorReturn("DUPLICATE_SUBMISSION", "You have already checked in today", "409", "Conflict"),
				rateLimited,
				errorReturn("UPLOAD_FAILED", "Failed to upload photo", "500", "Internal Server Error"),
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// GET /absen/:user_id
		endpoint.New(
			endpoint.GET,
			"/absen/{user_id}",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("List a user's attendance records"),
			endpoint.WithDescription("Newest first. Pass date to restrict the list to a single day."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("user_id", parameter.Path, parameter.WithDescription("Employee identifier")),
				parameter.StrParam("date", parameter.Query, parameter.WithDescription("Optional day filter (YYYY-MM-DD)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceHistoryResponse{}, "200", "Attendance history"),
			}),
			endpoint.WithErrors([]response.Response{
				errorReturn("INVALID_REQUEST", "date must be formatted as YYYY-MM-DD", "400", "Bad Request"),
				unauthorized,
				errorReturn("USER_NOT_FOUND", "User not found", "404", "Not Found"),
				internal,
			}),
			endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}}),
		),

		// Health
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Process is up"),
			}),
		),
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Pings the database."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{Status: "ready"}, "200", "Ready to serve"),
			}),
			endpoint.WithErrors([]response.Response{
				errorReturn("SERVICE_UNAVAILABLE", "Service temporarily unavailable", "503", "Service Unavailable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
