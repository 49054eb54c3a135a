package summary

import (
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendant"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/summary"
	attendanceService "github.com/deskmetrics/deskmetrics-backend-go/internal/service/attendance"
)

// BuildRows aggregates raw records into the cache rows of one window: one row
// per roster member, zero-activity members included. Records outside the
// window are ignored and duplicates collapse before counting.
func BuildRows(window summary.Window, records []attendance.AttendanceRecord, roster []attendant.Attendant) []summary.Row {
	spec := attendance.FilterSpec{Period: attendance.PeriodWindow{Range: &window.Range}}

	// the explicit range makes the filter independent of now
	metrics := attendanceService.ComputeMetrics(records, spec, roster, time.Time{})

	rows := make([]summary.Row, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, summary.Row{
			Attendant:              m.AttendantName,
			PeriodType:             window.PeriodType,
			PeriodStart:            window.Range.Start,
			PeriodEnd:              window.Range.End,
			TotalCount:             m.TotalCount,
			TotalDurationMinutes:   m.TotalDurationMinutes,
			AverageDurationMinutes: m.AverageDurationMinutes,
			FinalizedCount:         m.ResolvedCount,
			InProgressCount:        m.InProgressCount,
			PendingCount:           m.PendingCount,
			ResolutionRatePercent:  m.ResolutionRatePercent,
			EfficiencyIndex:        m.EfficiencyIndex,
		})
	}
	return rows
}
