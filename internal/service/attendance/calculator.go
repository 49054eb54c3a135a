package attendance

import (
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendant"
)

// accumulator sums one group of deduplicated records
type accumulator struct {
	count         int
	resolved      int
	pending       int
	inProgress    int
	malformed     int
	totalDuration float64
}

func (a *accumulator) add(r attendance.AttendanceRecord) {
	a.count++
	switch r.Resolution() {
	case attendance.ResolutionResolved:
		a.resolved++
	case attendance.ResolutionPending:
		a.pending++
	default:
		a.inProgress++
	}

	// Malformed rows stay in the count but add nothing to numeric aggregates
	if r.IsMalformed() {
		a.malformed++
		return
	}
	d, _ := r.Duration()
	a.totalDuration += d
}

func (a accumulator) average() float64 {
	return ratio(a.totalDuration, float64(a.count))
}

func (a accumulator) metric(name string) attendance.AttendantMetric {
	avg := a.average()
	return attendance.AttendantMetric{
		AttendantName:          name,
		TotalCount:             a.count,
		TotalDurationMinutes:   a.totalDuration,
		AverageDurationMinutes: avg,
		EfficiencyIndex:        EfficiencyIndex(a.count, avg),
		ResolvedCount:          a.resolved,
		PendingCount:           a.pending,
		InProgressCount:        a.inProgress,
		MalformedCount:         a.malformed,
		ResolutionRatePercent:  100 * ratio(float64(a.resolved), float64(a.count)),
	}
}

// ratio divides and returns 0 instead of NaN or Inf when den is 0
func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

// EfficiencyIndex is count divided by average handling time, 0 when the average is 0
func EfficiencyIndex(count int, averageDuration float64) float64 {
	return ratio(float64(count), averageDuration)
}

// Calculate aggregates an already deduplicated record set for one attendant
func Calculate(name string, records []attendance.AttendanceRecord) attendance.AttendantMetric {
	var acc accumulator
	for _, r := range records {
		acc.add(r)
	}
	return acc.metric(name)
}

// ComputeMetrics filters and deduplicates records, then aggregates them per
// attendant. With a non-empty roster the result holds exactly one entry per
// roster member in roster order, zero-activity members included. Without a
// roster every attendant found in the records is reported in first-seen order.
func ComputeMetrics(records []attendance.AttendanceRecord, spec attendance.FilterSpec, roster []attendant.Attendant, now time.Time) []attendance.AttendantMetric {
	filtered := Dedupe(ApplyFilter(records, spec, now))
	return aggregateByAttendant(filtered, roster)
}

// aggregateByAttendant groups deduplicated records by attendant name
func aggregateByAttendant(records []attendance.AttendanceRecord, roster []attendant.Attendant) []attendance.AttendantMetric {
	groups := make(map[string]*accumulator)
	var seenOrder []string
	for _, r := range records {
		if r.AttendantName == "" {
			continue
		}
		acc, ok := groups[r.AttendantName]
		if !ok {
			acc = &accumulator{}
			groups[r.AttendantName] = acc
			seenOrder = append(seenOrder, r.AttendantName)
		}
		acc.add(r)
	}

	if len(roster) == 0 {
		out := make([]attendance.AttendantMetric, 0, len(seenOrder))
		for _, name := range seenOrder {
			out = append(out, groups[name].metric(name))
		}
		return out
	}

	out := make([]attendance.AttendantMetric, 0, len(roster))
	for _, a := range roster {
		var m attendance.AttendantMetric
		if acc, ok := groups[a.Name]; ok {
			m = acc.metric(a.Name)
		} else {
			m = accumulator{}.metric(a.Name)
		}
		m.PhotoURL = a.PhotoURL
		out = append(out, m)
	}
	return out
}

// Summarize deduplicates records and computes the overall totals
func Summarize(records []attendance.AttendanceRecord) attendance.Totals {
	deduped, dropped := dedupe(records)

	var acc accumulator
	for _, r := range deduped {
		acc.add(r)
	}
	return attendance.Totals{
		TotalCount:             acc.count,
		FinalizedCount:         acc.resolved,
		InProgressCount:        acc.inProgress,
		PendingCount:           acc.pending,
		MalformedCount:         acc.malformed,
		DuplicateCount:         dropped,
		TotalDurationMinutes:   acc.totalDuration,
		AverageDurationMinutes: acc.average(),
		ResolutionRatePercent:  100 * ratio(float64(acc.resolved), float64(acc.count)),
	}
}
