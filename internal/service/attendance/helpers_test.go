package attendance

import (
	"math"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendant"
)

// fixedNow is Wednesday 2024-03-13 in UTC
var fixedNow = time.Date(2024, time.March, 13, 15, 30, 0, 0, time.UTC)

func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

func record(id, name, date string, duration float64) attendance.AttendanceRecord {
	return attendance.AttendanceRecord{
		ID:              "row-" + id,
		AttendanceID:    id,
		AttendantName:   name,
		Date:            date,
		DurationMinutes: floatPtr(duration),
	}
}

func roster(names ...string) []attendant.Attendant {
	out := make([]attendant.Attendant, 0, len(names))
	for _, n := range names {
		out = append(out, attendant.Attendant{ID: "id-" + n, Name: n, Active: true})
	}
	return out
}

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
