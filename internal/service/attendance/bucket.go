package attendance

import (
	"sort"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
)

// BucketKey formats the display key of the bucket containing date
func BucketKey(date time.Time, g attendance.Granularity) string {
	if g == attendance.GranularityMonth {
		return date.Format("01/2006")
	}
	return date.Format("02/01")
}

// bucketStart returns the first calendar date of the bucket containing date
func bucketStart(date time.Time, g attendance.Granularity) time.Time {
	date = attendance.CalendarDate(date)
	if g == attendance.GranularityMonth {
		return StartOfMonth(date)
	}
	return date
}

func nextBucket(start time.Time, g attendance.Granularity) time.Time {
	if g == attendance.GranularityMonth {
		return start.AddDate(0, 1, 0)
	}
	return start.AddDate(0, 0, 1)
}

// TrailingWindow returns the range covering the last n buckets up to now
func TrailingWindow(g attendance.Granularity, n int, now time.Time) attendance.DateRange {
	if n < 1 {
		n = 1
	}
	today := attendance.CalendarDate(now)
	if g == attendance.GranularityMonth {
		return attendance.DateRange{Start: StartOfMonth(today).AddDate(0, -(n - 1), 0), End: today}
	}
	return attendance.DateRange{Start: today.AddDate(0, 0, -(n - 1)), End: today}
}

// BucketCount returns how many buckets of granularity g a bounded window spans
func BucketCount(window attendance.DateRange, g attendance.Granularity) int {
	if !window.IsBounded() || window.End.Before(window.Start) {
		return 0
	}
	start, end := bucketStart(window.Start, g), bucketStart(window.End, g)
	if g == attendance.GranularityMonth {
		return (end.Year()-start.Year())*12 + int(end.Month()-start.Month()) + 1
	}
	// year arithmetic first so spans beyond time.Duration stay exact
	days := 0
	for y := start.Year(); y < end.Year(); y++ {
		days += time.Date(y, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
	}
	return days + end.YearDay() - start.YearDay() + 1
}

// ComputeTrend groups deduplicated records into day or month buckets.
// With a bounded window every bucket of the window is present, empty ones
// with a zero count, and records outside the window are ignored. Points are
// ordered by bucket start date. A window needing more than MaxTrendBuckets
// buckets fails with ErrTrendTooLarge.
func ComputeTrend(records []attendance.AttendanceRecord, g attendance.Granularity, window attendance.DateRange) ([]attendance.TrendPoint, error) {
	if !g.IsValid() {
		return nil, attendance.ErrInvalidGranularity
	}

	buckets := make(map[time.Time]*accumulator)
	if window.IsBounded() {
		if BucketCount(window, g) > attendance.MaxTrendBuckets {
			return nil, attendance.ErrTrendTooLarge
		}
		last := bucketStart(window.End, g)
		for b := bucketStart(window.Start, g); !b.After(last); b = nextBucket(b, g) {
			buckets[b] = &accumulator{}
		}
	}

	for _, r := range records {
		date, err := r.ServiceDate()
		if err != nil {
			continue
		}
		if !window.Contains(date) {
			continue
		}
		key := bucketStart(date, g)
		acc, ok := buckets[key]
		if !ok {
			acc = &accumulator{}
			buckets[key] = acc
		}
		acc.add(r)
	}

	points := make([]attendance.TrendPoint, 0, len(buckets))
	for start, acc := range buckets {
		points = append(points, attendance.TrendPoint{
			BucketKey:              BucketKey(start, g),
			BucketStart:            start,
			Count:                  acc.count,
			AverageDurationMinutes: acc.average(),
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].BucketStart.Before(points[j].BucketStart)
	})
	return points, nil
}
