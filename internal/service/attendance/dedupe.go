package attendance

import (
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
)

// Dedupe collapses rows sharing an AttendanceID into one, keeping the first
// row seen in input order. Rows without an AttendanceID cannot be matched and
// are all kept. Output order is input order of the retained rows.
func Dedupe(records []attendance.AttendanceRecord) []attendance.AttendanceRecord {
	out, _ := dedupe(records)
	return out
}

// dedupe also reports how many rows were discarded
func dedupe(records []attendance.AttendanceRecord) ([]attendance.AttendanceRecord, int) {
	seen := make(map[string]struct{}, len(records))
	out := make([]attendance.AttendanceRecord, 0, len(records))
	dropped := 0
	for _, r := range records {
		if r.AttendanceID == "" {
			out = append(out, r)
			continue
		}
		if _, ok := seen[r.AttendanceID]; ok {
			dropped++
			continue
		}
		seen[r.AttendanceID] = struct{}{}
		out = append(out, r)
	}
	return out, dropped
}
