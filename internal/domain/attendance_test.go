package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAttendanceType(t *testing.T) {
	tests := []struct {
		in     string
		want   AttendanceType
		wantOK bool
	}{
		{"CHECK_IN", CheckIn, true},
		{"CHECK_OUT", CheckOut, true},
		{"absen_masuk", CheckIn, true},
		{" absen_keluar ", CheckOut, true},
		{"lunch", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAttendanceType(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAttendanceType_Messages(t *testing.T) {
	assert.Equal(t, "Check-in successful", CheckIn.SuccessMessage())
	assert.Equal(t, "Check-out successful", CheckOut.SuccessMessage())
	assert.Contains(t, CheckIn.DuplicateMessage(), "checked in")
	assert.Contains(t, CheckOut.DuplicateMessage(), "checked out")
}

func TestBoundingBox_Rect(t *testing.T) {
	b := BoundingBox{X: -10, Y: 5, Width: 50, Height: 40}
	r := b.Rect()

	assert.Equal(t, 0, r.Min.X)
	assert.Equal(t, 5, r.Min.Y)
	assert.Equal(t, 50, r.Dx())
	assert.Equal(t, 2000, b.Area())
}
