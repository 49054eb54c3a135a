package feedback

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendant"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/feedback"
)

// fixedNow is Wednesday 2024-03-13 in UTC
var fixedNow = time.Date(2024, time.March, 13, 15, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func fb(name string, rating, clarity int, resolved feedback.Resolution, module string, at time.Time) feedback.Feedback {
	f := feedback.Feedback{
		Attendant:       name,
		GeneralRating:   rating,
		ClarityRating:   clarity,
		ProblemResolved: resolved,
		CreatedAt:       at,
	}
	if module != "" {
		f.Module = strPtr(module)
	}
	return f
}

func roster(names ...string) []attendant.Attendant {
	out := make([]attendant.Attendant, 0, len(names))
	for _, n := range names {
		out = append(out, attendant.Attendant{ID: "id-" + n, Name: n, Active: true})
	}
	return out
}

type fakeFeedbackRepo struct {
	feedbacks      []feedback.Feedback
	modules        []feedback.Module
	err            error
	lastFilter     feedback.Filter
	lastListFilter feedback.ListFilter
	created        int
}

func (f *fakeFeedbackRepo) FetchFeedbacks(_ context.Context, filter feedback.Filter) ([]feedback.Feedback, error) {
	f.lastFilter = filter
	return f.feedbacks, f.err
}

func (f *fakeFeedbackRepo) ListFeedbacks(_ context.Context, filter feedback.ListFilter) ([]feedback.Feedback, int64, error) {
	f.lastListFilter = filter
	if f.err != nil {
		return nil, 0, f.err
	}

	var matched []feedback.Feedback
	for _, fb := range f.feedbacks {
		if filter.Attendant != "" && fb.Attendant != filter.Attendant {
			continue
		}
		if filter.Module != "" && (fb.Module == nil || *fb.Module != filter.Module) {
			continue
		}
		if filter.GeneralRating != 0 && fb.GeneralRating != filter.GeneralRating {
			continue
		}
		if filter.ProblemResolved != "" && fb.ProblemResolved != filter.ProblemResolved {
			continue
		}
		matched = append(matched, fb)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	start := min(filter.Offset(), len(matched))
	end := min(start+filter.Limit, len(matched))
	return matched[start:end], total, nil
}

func (f *fakeFeedbackRepo) GetFeedbackByID(_ context.Context, id string) (feedback.Feedback, error) {
	for _, fb := range f.feedbacks {
		if fb.ID == id {
			return fb, nil
		}
	}
	return feedback.Feedback{}, feedback.ErrFeedbackNotFound
}

func (f *fakeFeedbackRepo) CreateFeedback(_ context.Context, fb *feedback.Feedback) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.feedbacks {
		if existing.AttendanceID != nil && fb.AttendanceID != nil && *existing.AttendanceID == *fb.AttendanceID {
			return feedback.ErrDuplicateFeedback
		}
	}
	f.created++
	fb.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", f.created)
	fb.CreatedAt = fixedNow
	f.feedbacks = append(f.feedbacks, *fb)
	return nil
}

func (f *fakeFeedbackRepo) FetchActiveModules(_ context.Context) ([]feedback.Module, error) {
	return f.modules, nil
}

type fakeRosterRepo struct {
	roster []attendant.Attendant
	err    error
}

func (f *fakeRosterRepo) FetchActiveAttendants(_ context.Context) ([]attendant.Attendant, error) {
	return f.roster, f.err
}
