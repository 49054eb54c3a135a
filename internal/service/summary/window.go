package summary

import (
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/summary"
	attendanceService "github.com/deskmetrics/deskmetrics-backend-go/internal/service/attendance"
)

// WindowFor returns the calendar period of periodType containing now.
// Weeks run Sunday to Saturday. A window stays the same for the whole
// period, so refreshing later in the period replaces the same rows.
func WindowFor(periodType summary.PeriodType, now time.Time) (summary.Window, error) {
	today := attendance.CalendarDate(now)

	var start, end time.Time
	switch periodType {
	case summary.PeriodDaily:
		start, end = today, today
	case summary.PeriodWeekly:
		start = attendanceService.StartOfWeek(today)
		end = start.AddDate(0, 0, 6)
	case summary.PeriodMonthly:
		start = attendanceService.StartOfMonth(today)
		end = start.AddDate(0, 1, -1)
	case summary.PeriodYearly:
		start = attendanceService.StartOfYear(today)
		end = start.AddDate(1, 0, -1)
	default:
		return summary.Window{}, summary.ErrInvalidPeriodType
	}

	return summary.Window{
		PeriodType: periodType,
		Range:      attendance.DateRange{Start: start, End: end},
	}, nil
}
