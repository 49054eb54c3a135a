package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendant"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/summary"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/metrics"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/sse"
	attendanceService "github.com/deskmetrics/deskmetrics-backend-go/internal/service/attendance"
	"github.com/google/uuid"
)

// TopicSummary is the hub topic refresh events are published on
const TopicSummary = "summary"

// Option configures SummaryServiceImpl
type Option func(*SummaryServiceImpl)

// WithClock overrides time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *SummaryServiceImpl) {
		s.now = now
	}
}

// WithLocation evaluates calendar periods in loc
func WithLocation(loc *time.Location) Option {
	return func(s *SummaryServiceImpl) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithTopN sets the default spotlight size of cached rankings
func WithTopN(n int) Option {
	return func(s *SummaryServiceImpl) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithMetrics records refresh counters and durations
func WithMetrics(m *metrics.Manager) Option {
	return func(s *SummaryServiceImpl) {
		s.metrics = m
	}
}

// WithHub publishes refresh events on hub
func WithHub(hub *sse.Hub) Option {
	return func(s *SummaryServiceImpl) {
		s.hub = hub
	}
}

type SummaryServiceImpl struct {
	recordRepo attendance.RecordRepository
	rosterRepo attendant.AttendantRepository
	store      summary.SummaryRepository
	hub        *sse.Hub
	metrics    *metrics.Manager
	locks      *windowLocks
	now        func() time.Time
	loc        *time.Location
	topN       int
}

func NewSummaryService(
	recordRepo attendance.RecordRepository,
	rosterRepo attendant.AttendantRepository,
	store summary.SummaryRepository,
	opts ...Option,
) summary.SummaryService {
	s := &SummaryServiceImpl{
		recordRepo: recordRepo,
		rosterRepo: rosterRepo,
		store:      store,
		locks:      newWindowLocks(),
		now:        time.Now,
		loc:        time.UTC,
		topN:       attendanceService.DefaultTopN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh recomputes the current window of each requested period type.
// Windows are committed one at a time; a failure stops the refresh and
// leaves the failed window with its previous rows.
func (s *SummaryServiceImpl) Refresh(ctx context.Context, periodType *summary.PeriodType) (*summary.RefreshReport, error) {
	targets := summary.PeriodTypes
	if periodType != nil {
		if !periodType.IsValid() {
			return nil, summary.ErrInvalidPeriodType
		}
		targets = []summary.PeriodType{*periodType}
	}

	report := &summary.RefreshReport{
		RunID:     uuid.NewString(),
		StartedAt: s.now(),
	}
	now := report.StartedAt.In(s.loc)

	roster, err := s.rosterRepo.FetchActiveAttendants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active attendants: %w", err)
	}

	for _, p := range targets {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", summary.ErrRefreshCancelled, err)
		}

		window, err := WindowFor(p, now)
		if err != nil {
			return nil, err
		}

		refreshed, err := s.refreshWindow(ctx, window, report.RunID, roster)
		if err != nil {
			slog.Error("Summary refresh failed",
				"run_id", report.RunID,
				"window", window.Key(),
				"error", err)
			return nil, err
		}
		report.Windows = append(report.Windows, *refreshed)
	}

	report.CompletedAt = s.now()
	slog.Info("Summary refresh completed",
		"run_id", report.RunID,
		"windows", len(report.Windows),
		"duration", report.CompletedAt.Sub(report.StartedAt))

	s.publish(report)
	return report, nil
}

// refreshWindow rebuilds and commits one window under its lock
func (s *SummaryServiceImpl) refreshWindow(ctx context.Context, window summary.Window, runID string, roster []attendant.Attendant) (*summary.RefreshedWindow, error) {
	release := s.locks.acquire(window.Key())
	defer release()

	start := time.Now()
	records, err := s.recordRepo.FetchAttendanceRecords(ctx, attendance.FilterSpec{
		Period: attendance.PeriodWindow{Range: &window.Range},
	})
	if err != nil {
		s.metrics.RecordRefresh(string(window.PeriodType), false, time.Since(start))
		return nil, fmt.Errorf("failed to fetch attendance records for %s: %w", window.Key(), err)
	}

	rows := BuildRows(window, records, roster)

	if err := s.store.WriteRows(ctx, window, runID, rows); err != nil {
		s.metrics.RecordRefresh(string(window.PeriodType), false, time.Since(start))
		if errors.Is(err, summary.ErrCacheCommitFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: window %s: %w", summary.ErrCacheCommitFailure, window.Key(), err)
	}

	elapsed := time.Since(start)
	s.metrics.RecordRefresh(string(window.PeriodType), true, elapsed)
	s.metrics.SetSummaryRows(string(window.PeriodType), len(rows))
	slog.Debug("Summary window committed",
		"run_id", runID,
		"window", window.Key(),
		"rows", len(rows),
		"duration", elapsed)

	return &summary.RefreshedWindow{
		Window:   window,
		RunID:    runID,
		RowCount: len(rows),
		Duration: elapsed,
	}, nil
}

func (s *SummaryServiceImpl) publish(report *summary.RefreshReport) {
	if s.hub == nil {
		return
	}
	delivered := s.hub.Publish(sse.Event{
		ID:    report.RunID,
		Topic: TopicSummary,
		Event: summary.EventRefreshed,
		Data:  summary.NewRefreshResponse(report),
	})
	slog.Debug("Summary refresh event published", "run_id", report.RunID, "subscribers", delivered)
}

// Query reads cached rows. The ranking covers the most recent window in the
// result so rows of different windows are never compared.
func (s *SummaryServiceImpl) Query(ctx context.Context, req summary.QueryRequest) (*summary.QueryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	periodType := summary.PeriodType(req.PeriodType)
	rows, err := s.store.ReadRows(ctx, periodType, req.DateRange(), req.Attendant)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary rows: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PeriodStart.Before(rows[j].PeriodStart)
	})

	resp := &summary.QueryResponse{
		PeriodType: string(periodType),
		Rows:       make([]summary.RowResponse, 0, len(rows)),
	}
	for _, r := range rows {
		resp.Rows = append(resp.Rows, summary.NewRowResponse(r))
	}

	var latest []attendance.AttendantMetric
	if len(rows) > 0 {
		latestStart := rows[len(rows)-1].PeriodStart
		for _, r := range rows {
			if r.PeriodStart.Equal(latestStart) {
				latest = append(latest, r.ToMetric())
			}
		}
	}

	topN := s.topN
	if req.Top > 0 {
		topN = req.Top
	}
	resp.Ranking = attendance.NewRankingResponse(attendanceService.RankAttendants(latest, nil, topN))
	return resp, nil
}

// Subscribe streams refresh events published by this service
func (s *SummaryServiceImpl) Subscribe(ctx context.Context) (<-chan summary.RefreshEvent, func()) {
	out := make(chan summary.RefreshEvent, 10)
	if s.hub == nil {
		close(out)
		return out, func() {}
	}

	ch, cleanup := s.hub.Subscribe(TopicSummary)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				data, ok := event.Data.(summary.RefreshResponse)
				if !ok {
					continue
				}
				select {
				case out <- summary.RefreshEvent{ID: event.ID, Event: event.Event, Data: data}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}
