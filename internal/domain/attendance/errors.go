package attendance

import "errors"

// Attendance metrics domain errors
var (
	// ErrInvalidRecord marks a record whose date or duration cannot be used.
	// It is counted, never returned to callers of the engine.
	ErrInvalidRecord = errors.New("invalid attendance record")

	// ErrUnknownPeriodWindow is reported when a named window is not recognized;
	// the filter falls back to no date constraint.
	ErrUnknownPeriodWindow = errors.New("unknown period window")

	ErrInvalidGranularity = errors.New("granularity must be day or month")
	ErrInvalidDateRange   = errors.New("start date must not be after end date")
	ErrInvalidYear        = errors.New("invalid year")
	ErrDateRangeTooLong   = errors.New("date range must not exceed 100 years")

	// ErrTrendTooLarge is returned when a trend window would need more than
	// MaxTrendBuckets buckets
	ErrTrendTooLarge = errors.New("trend window spans too many buckets")
)

const (
	// MinYear is the earliest calendar year accepted in filters
	MinYear = 1000
	// MaxRangeDays bounds an explicit start/end range
	MaxRangeDays = 36525
	// MaxTrendBuckets bounds the zero-filled buckets of one trend series
	MaxTrendBuckets = 1300
)
