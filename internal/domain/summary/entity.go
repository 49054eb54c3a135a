package summary

import (
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
)

// PeriodType is the granularity of a summary cache window
type PeriodType string

const (
	PeriodDaily   PeriodType = "diario"
	PeriodWeekly  PeriodType = "semanal"
	PeriodMonthly PeriodType = "mensal"
	PeriodYearly  PeriodType = "anual"
)

// PeriodTypes lists every supported period type in refresh order
var PeriodTypes = []PeriodType{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly}

func (p PeriodType) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

func (p PeriodType) String() string {
	return string(p)
}

// Window identifies one refreshable slice of the cache
type Window struct {
	PeriodType PeriodType
	Range      attendance.DateRange
}

// Key identifies the window for locking and logging
func (w Window) Key() string {
	return string(w.PeriodType) + ":" + w.Range.String()
}

// Row is one cached aggregate for an attendant over a window. Values are
// stored unrounded.
type Row struct {
	Attendant              string
	PeriodType             PeriodType
	PeriodStart            time.Time
	PeriodEnd              time.Time
	TotalCount             int
	TotalDurationMinutes   float64
	AverageDurationMinutes float64
	FinalizedCount         int
	InProgressCount        int
	PendingCount           int
	ResolutionRatePercent  float64
	EfficiencyIndex        float64
}

// ToMetric converts the row back into an AttendantMetric for ranking
func (r Row) ToMetric() attendance.AttendantMetric {
	return attendance.AttendantMetric{
		AttendantName:          r.Attendant,
		TotalCount:             r.TotalCount,
		TotalDurationMinutes:   r.TotalDurationMinutes,
		AverageDurationMinutes: r.AverageDurationMinutes,
		EfficiencyIndex:        r.EfficiencyIndex,
		ResolvedCount:          r.FinalizedCount,
		PendingCount:           r.PendingCount,
		InProgressCount:        r.InProgressCount,
		ResolutionRatePercent:  r.ResolutionRatePercent,
	}
}

// RefreshedWindow reports one committed window
type RefreshedWindow struct {
	Window   Window
	RunID    string
	RowCount int
	Duration time.Duration
}

// RefreshReport is the outcome of one refresh call
type RefreshReport struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Windows     []RefreshedWindow
}
