package attendance

import (
	"math"
	"strings"
	"time"
)

// Status values as stored in the status column of atendimentos
const (
	StatusFinalized  = "Finalizado"
	StatusInProgress = "Em Andamento"
	StatusPending    = "Pendente"
)

// Resolution is the reconciled outcome of the resolved flag and the status column
type Resolution int

const (
	ResolutionInProgress Resolution = iota
	ResolutionResolved
	ResolutionPending
)

func (r Resolution) String() string {
	switch r {
	case ResolutionResolved:
		return "resolved"
	case ResolutionPending:
		return "pending"
	default:
		return "in_progress"
	}
}

// AttendanceRecord is one raw row from the record source. The same AttendanceID
// may appear more than once when the source embeds one-to-many joins.
type AttendanceRecord struct {
	ID              string
	AttendanceID    string
	AttendantName   string
	Date            string
	DurationMinutes *float64
	Company         *string
	CompanyKey      *string
	Type            *string
	Resolved        *bool
	Status          *string
	CreatedAt       time.Time
}

// ServiceDate parses the record's calendar date
func (r AttendanceRecord) ServiceDate() (time.Time, error) {
	return ParseDate(r.Date)
}

// Duration returns the handling time in minutes. Absent durations are 0 and valid;
// negative, NaN or infinite values are reported as invalid.
func (r AttendanceRecord) Duration() (float64, bool) {
	if r.DurationMinutes == nil {
		return 0, true
	}
	d := *r.DurationMinutes
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0, false
	}
	return d, true
}

// IsMalformed reports whether the record fails date or duration parsing
func (r AttendanceRecord) IsMalformed() bool {
	if _, err := r.ServiceDate(); err != nil {
		return true
	}
	_, ok := r.Duration()
	return !ok
}

// Resolution reconciles the two overlapping resolution signals.
// Checks run resolved, then pending, then in-progress so the three buckets partition.
func (r AttendanceRecord) Resolution() Resolution {
	status := ""
	if r.Status != nil {
		status = strings.TrimSpace(*r.Status)
	}
	if (r.Resolved != nil && *r.Resolved) || status == StatusFinalized {
		return ResolutionResolved
	}
	if status == StatusPending {
		return ResolutionPending
	}
	return ResolutionInProgress
}

// Matches reports whether term appears, ignoring case, in the attendant, the
// attendance ID, the company or the company key
func (r AttendanceRecord) Matches(term string) bool {
	term = strings.ToLower(term)
	fields := []string{r.AttendantName, r.AttendanceID}
	if r.Company != nil {
		fields = append(fields, *r.Company)
	}
	if r.CompanyKey != nil {
		fields = append(fields, *r.CompanyKey)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// AttendantMetric is the per-attendant aggregate over a deduplicated record set.
// Values are unrounded.
type AttendantMetric struct {
	AttendantName          string
	PhotoURL               *string
	TotalCount             int
	TotalDurationMinutes   float64
	AverageDurationMinutes float64
	EfficiencyIndex        float64
	ResolvedCount          int
	PendingCount           int
	InProgressCount        int
	MalformedCount         int
	ResolutionRatePercent  float64
}

// IsActive reports whether the attendant handled at least one attendance
func (m AttendantMetric) IsActive() bool {
	return m.TotalCount > 0
}

// Totals is the overall aggregate shown on the dashboard stat cards
type Totals struct {
	TotalCount             int
	FinalizedCount         int
	InProgressCount        int
	PendingCount           int
	MalformedCount         int
	DuplicateCount         int
	TotalDurationMinutes   float64
	AverageDurationMinutes float64
	ResolutionRatePercent  float64
}

// Granularity selects the calendar bucket used by trend series
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

func (g Granularity) IsValid() bool {
	return g == GranularityDay || g == GranularityMonth
}

// TrendPoint is one bucket of a trend series
type TrendPoint struct {
	BucketKey              string
	BucketStart            time.Time
	Count                  int
	AverageDurationMinutes float64
}

// RankedAttendant is an AttendantMetric with its 1-based ranking position
type RankedAttendant struct {
	Position int
	AttendantMetric
}

// Ranking holds the full ordering and the top-N slice taken from the same sort
type Ranking struct {
	All []RankedAttendant
	Top []RankedAttendant
}
