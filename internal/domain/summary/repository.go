package summary

import (
	"context"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
)

// SummaryRepository is the cache store
type SummaryRepository interface {
	// WriteRows replaces every row of the window in one transaction.
	// Either all rows are committed or the previous rows stay untouched.
	WriteRows(ctx context.Context, window Window, runID string, rows []Row) error

	// ReadRows returns cached rows of periodType whose window overlaps
	// dateRange (unbounded for all), optionally for one attendant
	ReadRows(ctx context.Context, periodType PeriodType, dateRange attendance.DateRange, attendantFilter string) ([]Row, error)
}
