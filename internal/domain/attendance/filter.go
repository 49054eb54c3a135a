package attendance

import (
	"fmt"
	"strings"
	"time"
)

// Named period windows accepted by the filter pipeline
const (
	PeriodToday   = "today"
	Period7Days   = "7d"
	Period30Days  = "30d"
	Period90Days  = "90d"
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodYear    = "year"
	PeriodAll     = "all"
	FilterAnyName = "all"
)

var namedPeriods = map[string]struct{}{
	PeriodToday:  {},
	Period7Days:  {},
	Period30Days: {},
	Period90Days: {},
	PeriodWeek:   {},
	PeriodMonth:  {},
	PeriodYear:   {},
	PeriodAll:    {},
}

// IsNamedPeriod reports whether name is a known relative window
func IsNamedPeriod(name string) bool {
	_, ok := namedPeriods[name]
	return ok
}

// DateRange is an inclusive range of calendar dates. The zero value is unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange normalizes both ends to calendar dates
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: CalendarDate(start), End: CalendarDate(end)}
}

// IsBounded reports whether the range constrains dates at all
func (r DateRange) IsBounded() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

// Contains reports whether the calendar date d falls inside the range
func (r DateRange) Contains(d time.Time) bool {
	if !r.IsBounded() {
		return true
	}
	d = CalendarDate(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

func (r DateRange) String() string {
	if !r.IsBounded() {
		return "all"
	}
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

// PeriodWindow is either a named relative window or an explicit date range
type PeriodWindow struct {
	Name  string
	Range *DateRange
}

// FilterSpec is the composable filter applied before aggregation.
// Empty values and "all" disable a dimension.
type FilterSpec struct {
	Period     PeriodWindow
	Attendant  string
	CompanyKey string
	Year       int
}

// HasAttendant reports whether the attendant dimension is constrained
func (f FilterSpec) HasAttendant() bool {
	return isConstrained(f.Attendant)
}

// HasCompanyKey reports whether the company key dimension is constrained
func (f FilterSpec) HasCompanyKey() bool {
	return isConstrained(f.CompanyKey)
}

func isConstrained(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, FilterAnyName)
}

// DateLayout is the ISO calendar date layout used for storage and query params
const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, "02/01/2006", time.RFC3339, time.RFC3339Nano}

// ParseDate parses a stored calendar date. ISO dates, Brazilian DD/MM/YYYY dates
// and full timestamps are accepted; the time part is dropped.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrInvalidRecord)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return CalendarDate(t), nil
		}
	}
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", ErrInvalidRecord, s)
}

// CalendarDate drops the clock part of t, keeping its calendar day in UTC
func CalendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
