package attendance

import (
	"strings"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
)

// ResolveWindow turns a period window into a concrete inclusive date range
// relative to now. The second return is false when a named window was not
// recognized; the range is then unbounded.
func ResolveWindow(w attendance.PeriodWindow, now time.Time) (attendance.DateRange, bool) {
	if w.Range != nil {
		return attendance.NewDateRange(w.Range.Start, w.Range.End), true
	}

	today := attendance.CalendarDate(now)
	switch strings.ToLower(strings.TrimSpace(w.Name)) {
	case "", attendance.PeriodAll:
		return attendance.DateRange{}, true
	case attendance.PeriodToday:
		return attendance.DateRange{Start: today, End: today}, true
	case attendance.Period7Days:
		return attendance.DateRange{Start: today.AddDate(0, 0, -6), End: today}, true
	case attendance.Period30Days:
		return attendance.DateRange{Start: today.AddDate(0, 0, -29), End: today}, true
	case attendance.Period90Days:
		return attendance.DateRange{Start: today.AddDate(0, 0, -89), End: today}, true
	case attendance.PeriodWeek:
		return attendance.DateRange{Start: StartOfWeek(today), End: today}, true
	case attendance.PeriodMonth:
		return attendance.DateRange{Start: StartOfMonth(today), End: today}, true
	case attendance.PeriodYear:
		return attendance.DateRange{Start: StartOfYear(today), End: today}, true
	default:
		return attendance.DateRange{}, false
	}
}

// StartOfWeek returns the Sunday on or before d
func StartOfWeek(d time.Time) time.Time {
	d = attendance.CalendarDate(d)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// StartOfMonth returns the first day of d's month
func StartOfMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// StartOfYear returns January 1st of d's year
func StartOfYear(d time.Time) time.Time {
	return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// ApplyFilter returns the records satisfying every constrained dimension of spec.
// Records with an unparseable date fail any active date predicate.
func ApplyFilter(records []attendance.AttendanceRecord, spec attendance.FilterSpec, now time.Time) []attendance.AttendanceRecord {
	window, _ := ResolveWindow(spec.Period, now)
	dateActive := window.IsBounded() || spec.Year != 0

	out := make([]attendance.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if spec.HasAttendant() && r.AttendantName != spec.Attendant {
			continue
		}
		if spec.HasCompanyKey() && (r.CompanyKey == nil || *r.CompanyKey != spec.CompanyKey) {
			continue
		}
		if dateActive {
			date, err := r.ServiceDate()
			if err != nil {
				continue
			}
			if !window.Contains(date) {
				continue
			}
			if spec.Year != 0 && date.Year() != spec.Year {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
