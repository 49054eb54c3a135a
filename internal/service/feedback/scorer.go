package feedback

import (
	"sort"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendant"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/feedback"
)

// Score weights
const (
	ratingWeight     = 0.4
	clarityWeight    = 0.3
	resolutionWeight = 0.03
)

// TendencyDays is the length of the daily rating tendency series
const TendencyDays = 7

// Score combines average rating, average clarity and resolution rate (0-100)
// into a single performance score
func Score(avgRating, avgClarity, resolutionRate float64) float64 {
	return avgRating*ratingWeight + avgClarity*clarityWeight + resolutionRate*resolutionWeight
}

type tally struct {
	count     int
	rating    int
	clarity   int
	solved    int
	partial   int
	notSolved int
}

func (t *tally) add(f feedback.Feedback) {
	t.count++
	t.rating += f.GeneralRating
	t.clarity += f.ClarityRating
	switch f.ProblemResolved {
	case feedback.ResolutionSolved:
		t.solved++
	case feedback.ResolutionPartial:
		t.partial++
	case feedback.ResolutionNotSolved:
		t.notSolved++
	}
}

func (t tally) avgRating() float64 {
	return mean(t.rating, t.count)
}

func (t tally) avgClarity() float64 {
	return mean(t.clarity, t.count)
}

func (t tally) resolutionRate() float64 {
	return 100 * mean(t.solved, t.count)
}

func mean(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// BuildPerformance computes the feedback report. Every roster member gets an
// entry, in roster order; without a roster attendants appear in first-seen
// order. Only modules with feedback are reported.
func BuildPerformance(feedbacks []feedback.Feedback, roster []attendant.Attendant, modules []feedback.Module, now time.Time) *feedback.Performance {
	perf := &feedback.Performance{
		ResolutionDistribution: make(map[feedback.Resolution]int, len(feedback.Resolutions)),
		BestAttendant:          feedback.NoData,
		WorstAttendant:         feedback.NoData,
		BestModule:             feedback.NoData,
	}

	var overall tally
	byAttendant := make(map[string]*tally)
	var seenOrder []string
	byModule := make(map[string]*tally)

	for _, f := range feedbacks {
		overall.add(f)
		if f.GeneralRating >= 1 && f.GeneralRating <= 5 {
			perf.RatingDistribution[f.GeneralRating-1]++
		}
		if f.ProblemResolved.IsValid() {
			perf.ResolutionDistribution[f.ProblemResolved]++
		}

		t, ok := byAttendant[f.Attendant]
		if !ok {
			t = &tally{}
			byAttendant[f.Attendant] = t
			seenOrder = append(seenOrder, f.Attendant)
		}
		t.add(f)

		if f.Module != nil {
			m, ok := byModule[*f.Module]
			if !ok {
				m = &tally{}
				byModule[*f.Module] = m
			}
			m.add(f)
		}
	}

	perf.Overview = feedback.Overview{
		FeedbackCount:  overall.count,
		AverageRating:  overall.avgRating(),
		AverageClarity: overall.avgClarity(),
		ResolutionRate: overall.resolutionRate(),
	}

	names := seenOrder
	if len(roster) > 0 {
		names = attendant.Names(roster)
	}
	perf.Attendants = make([]feedback.AttendantPerformance, 0, len(names))
	for _, name := range names {
		var t tally
		if found, ok := byAttendant[name]; ok {
			t = *found
		}
		perf.Attendants = append(perf.Attendants, attendantPerformance(name, t))
	}
	perf.BestAttendant, perf.WorstAttendant = bestAndWorst(perf.Attendants)

	for _, m := range modules {
		t, ok := byModule[m.Name]
		if !ok {
			continue
		}
		mp := feedback.ModulePerformance{
			Module:         m.Name,
			FeedbackCount:  t.count,
			AverageRating:  t.avgRating(),
			AverageClarity: t.avgClarity(),
			ResolutionRate: t.resolutionRate(),
		}
		perf.Modules = append(perf.Modules, mp)
	}
	best := -1
	for i, m := range perf.Modules {
		if best < 0 || m.AverageRating > perf.Modules[best].AverageRating {
			best = i
		}
	}
	if best >= 0 {
		perf.BestModule = perf.Modules[best].Module
	}

	perf.Tendency = tendency(feedbacks, now)
	return perf
}

func attendantPerformance(name string, t tally) feedback.AttendantPerformance {
	ap := feedback.AttendantPerformance{
		Attendant:      name,
		FeedbackCount:  t.count,
		AverageRating:  t.avgRating(),
		AverageClarity: t.avgClarity(),
		Solved:         t.solved,
		Partial:        t.partial,
		NotSolved:      t.notSolved,
		ResolutionRate: t.resolutionRate(),
	}
	if t.count > 0 {
		ap.Score = Score(ap.AverageRating, ap.AverageClarity, ap.ResolutionRate)
	}
	return ap
}

// bestAndWorst picks the highest and lowest score among attendants with
// feedback. Ties keep the earlier attendant as best and the later as worst.
func bestAndWorst(perfs []feedback.AttendantPerformance) (string, string) {
	withData := make([]feedback.AttendantPerformance, 0, len(perfs))
	for _, p := range perfs {
		if p.FeedbackCount > 0 {
			withData = append(withData, p)
		}
	}
	if len(withData) == 0 {
		return feedback.NoData, feedback.NoData
	}
	sort.SliceStable(withData, func(i, j int) bool {
		return withData[i].Score > withData[j].Score
	})
	return withData[0].Attendant, withData[len(withData)-1].Attendant
}

// tendency buckets the average rating of the last TendencyDays calendar days,
// today included, zero-filling days without feedback
func tendency(feedbacks []feedback.Feedback, now time.Time) []feedback.TendencyPoint {
	today := attendance.CalendarDate(now)
	first := today.AddDate(0, 0, -(TendencyDays - 1))

	days := make(map[time.Time]*tally, TendencyDays)
	for _, f := range feedbacks {
		day := attendance.CalendarDate(f.CreatedAt.In(now.Location()))
		if day.Before(first) || day.After(today) {
			continue
		}
		t, ok := days[day]
		if !ok {
			t = &tally{}
			days[day] = t
		}
		t.add(f)
	}

	points := make([]feedback.TendencyPoint, 0, TendencyDays)
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		p := feedback.TendencyPoint{Date: d}
		if t, ok := days[d]; ok {
			p.FeedbackCount = t.count
			p.AverageRating = t.avgRating()
		}
		points = append(points, p)
	}
	return points
}
