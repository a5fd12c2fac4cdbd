package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type AttendanceType string

const (
	CheckIn  AttendanceType = "CHECK_IN"
	CheckOut AttendanceType = "CHECK_OUT"
)

// legacy values still sent by older mobile clients
var attendanceTypeAliases = map[string]AttendanceType{
	"check_in":     CheckIn,
	"check_out":    CheckOut,
	"absen_masuk":  CheckIn,
	"absen_keluar": CheckOut,
}

// ParseAttendanceType accepts the canonical values and their legacy aliases.
func ParseAttendanceType(s string) (AttendanceType, bool) {
	t, ok := attendanceTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

func (t AttendanceType) SuccessMessage() string {
	if t == CheckOut {
		return "Check-out successful"
	}
	return "Check-in successful"
}

func (t AttendanceType) DuplicateMessage() string {
	if t == CheckOut {
		return "You have already checked out today"
	}
	return "You have already checked in today"
}

// Stage names the step of the attendance pipeline a request reached.
type Stage string

const (
	StageReceived         Stage = "Received"
	StageLocationChecked  Stage = "LocationChecked"
	StageFaceExtracted    Stage = "FaceExtracted"
	StageIdentityLoaded   Stage = "IdentityLoaded"
	StageMatched          Stage = "Matched"
	StageDuplicateChecked Stage = "DuplicateChecked"
	StageCommitted        Stage = "Committed"
)

// AttendanceRequest is a raw submission before any check has run.
type AttendanceRequest struct {
	UserID       string `form:"user_id" validate:"required"`
	Type         string `form:"type" validate:"required,oneof=CHECK_IN CHECK_OUT check_in check_out absen_masuk absen_keluar"`
	Date         string `form:"date" validate:"required,datetime=2006-01-02"`
	Time         string `form:"time" validate:"required"`
	Latitude     string `form:"latitude" validate:"required,latitude"`
	Longitude    string `form:"longitude" validate:"required,longitude"`
	LocationName string `form:"location_name" validate:"max=255"`
	Photo        []byte `form:"photo" validate:"required,min=1"`
}

// AttendanceRecord is immutable once committed.
type AttendanceRecord struct {
	ID           uuid.UUID      `json:"id"`
	UserID       string         `json:"user_id"`
	Date         string         `json:"date"`
	Time         string         `json:"time"`
	Type         AttendanceType `json:"type"`
	Latitude     float64        `json:"latitude"`
	Longitude    float64        `json:"longitude"`
	Similarity   float64        `json:"similarity"`
	PhotoURL     string         `json:"photo_url"`
	LocationName string         `json:"location_name,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

type AttendanceResult struct {
	Record     *AttendanceRecord
	Similarity float64
	Message    string
}
