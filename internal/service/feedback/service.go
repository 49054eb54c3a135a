package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendant"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/feedback"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type Option func(*FeedbackServiceImpl)

func WithClock(now func() time.Time) Option {
	return func(s *FeedbackServiceImpl) {
		s.now = now
	}
}

type FeedbackServiceImpl struct {
	feedbackRepo feedback.FeedbackRepository
	rosterRepo   attendant.AttendantRepository
	now          func() time.Time
}

func NewFeedbackService(feedbackRepo feedback.FeedbackRepository, rosterRepo attendant.AttendantRepository, opts ...Option) feedback.FeedbackService {
	s := &FeedbackServiceImpl{
		feedbackRepo: feedbackRepo,
		rosterRepo:   rosterRepo,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Since returns the lower bound of a feedback period, nil for all
func Since(period string, now time.Time) (*time.Time, error) {
	var days int
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "", feedback.Period7Days:
		days = 7
	case feedback.Period30Days:
		days = 30
	case feedback.Period90Days:
		days = 90
	case feedback.PeriodAll:
		return nil, nil
	default:
		return nil, feedback.ErrInvalidPeriod
	}
	since := now.AddDate(0, 0, -days)
	return &since, nil
}

func (s *FeedbackServiceImpl) GetPerformance(ctx context.Context, req feedback.PerformanceRequest) (*feedback.PerformanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	since, err := Since(req.PeriodName(), now)
	if err != nil {
		return nil, err
	}

	filter := feedback.Filter{
		Since:           since,
		Attendant:       strings.TrimSpace(req.Attendant),
		Module:          strings.TrimSpace(req.Module),
		ProblemResolved: feedback.Resolution(req.ProblemResolved),
	}
	if filter.Attendant == "all" {
		filter.Attendant = ""
	}
	if filter.Module == "all" {
		filter.Module = ""
	}

	var (
		feedbacks []feedback.Feedback
		modules   []feedback.Module
		roster    []attendant.Attendant
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		feedbacks, err = s.feedbackRepo.FetchFeedbacks(gctx, filter)
		if err != nil {
			return fmt.Errorf("failed to fetch feedbacks: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		modules, err = s.feedbackRepo.FetchActiveModules(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch modules: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		roster, err = s.rosterRepo.FetchActiveAttendants(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch active attendants: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// a single-attendant report shows only that attendant
	if filter.Attendant != "" {
		roster = []attendant.Attendant{{Name: filter.Attendant, Active: true}}
	}

	perf := BuildPerformance(feedbacks, roster, modules, now)
	return feedback.NewPerformanceResponse(req.PeriodName(), perf), nil
}

// ListFeedbacks returns one page of feedback, newest first
func (s *FeedbackServiceImpl) ListFeedbacks(ctx context.Context, req feedback.ListFeedbackRequest) (*feedback.ListFeedbackResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	filter := req.ToListFilter()
	rows, total, err := s.feedbackRepo.ListFeedbacks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedbacks: %w", err)
	}

	out := make([]feedback.FeedbackResponse, 0, len(rows))
	for _, f := range rows {
		out = append(out, feedback.NewFeedbackResponse(f))
	}

	return &feedback.ListFeedbackResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: validator.TotalPages(total, filter.Limit),
		Feedbacks:  out,
	}, nil
}

func (s *FeedbackServiceImpl) GetFeedback(ctx context.Context, id string) (*feedback.FeedbackResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, feedback.ErrFeedbackNotFound
	}

	f, err := s.feedbackRepo.GetFeedbackByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := feedback.NewFeedbackResponse(f)
	return &resp, nil
}

// SubmitFeedback stores a survey answer. A second answer for the same
// attendance is rejected with ErrDuplicateFeedback.
func (s *FeedbackServiceImpl) SubmitFeedback(ctx context.Context, req feedback.SubmitFeedbackRequest) (*feedback.FeedbackResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	f := req.ToFeedback()
	if err := s.feedbackRepo.CreateFeedback(ctx, f); err != nil {
		if errors.Is(err, feedback.ErrDuplicateFeedback) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	slog.Info("Feedback submitted", "attendant", f.Attendant, "attendance_id", *f.AttendanceID)
	resp := feedback.NewFeedbackResponse(*f)
	return &resp, nil
}
