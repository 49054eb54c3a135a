package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendant"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/metrics"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100

	// windows longer than this are charted by month
	maxDailyTrendDays = 90
)

// Option configures AttendanceServiceImpl
type Option func(*AttendanceServiceImpl)

// WithClock overrides time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *AttendanceServiceImpl) {
		s.now = now
	}
}

// WithLocation evaluates relative windows in loc
func WithLocation(loc *time.Location) Option {
	return func(s *AttendanceServiceImpl) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithTopN sets the default spotlight size of rankings
func WithTopN(n int) Option {
	return func(s *AttendanceServiceImpl) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithMetrics records deduplication and malformed-row counters
func WithMetrics(m *metrics.Manager) Option {
	return func(s *AttendanceServiceImpl) {
		s.metrics = m
	}
}

type AttendanceServiceImpl struct {
	recordRepo attendance.RecordRepository
	rosterRepo attendant.AttendantRepository
	metrics    *metrics.Manager
	now        func() time.Time
	loc        *time.Location
	topN       int
}

func NewAttendanceService(
	recordRepo attendance.RecordRepository,
	rosterRepo attendant.AttendantRepository,
	opts ...Option,
) attendance.AttendanceService {
	s := &AttendanceServiceImpl{
		recordRepo: recordRepo,
		rosterRepo: rosterRepo,
		now:        time.Now,
		loc:        time.UTC,
		topN:       DefaultTopN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// snapshot is one fetched, filtered and deduplicated view of the records
type snapshot struct {
	spec    attendance.FilterSpec
	window  attendance.DateRange
	raw     []attendance.AttendanceRecord
	records []attendance.AttendanceRecord
	roster  []attendant.Attendant
}

// resolveFilter converts a validated request into a spec and its concrete window.
// Unknown period names fall back to all.
func (s *AttendanceServiceImpl) resolveFilter(req attendance.FilterRequest) (attendance.FilterSpec, attendance.DateRange, time.Time) {
	now := s.now().In(s.loc)
	spec := req.ToFilterSpec()
	window, known := ResolveWindow(spec.Period, now)
	if !known {
		slog.Warn("Unknown period window, falling back to all",
			"period", spec.Period.Name,
			"error", attendance.ErrUnknownPeriodWindow)
		spec.Period = attendance.PeriodWindow{Name: attendance.PeriodAll}
	}
	return spec, window, now
}

// pushdown replaces a named window with its resolved dates so the source filters on concrete dates
func pushdown(spec attendance.FilterSpec, window attendance.DateRange) attendance.FilterSpec {
	if window.IsBounded() {
		spec.Period = attendance.PeriodWindow{Range: &window}
	}
	return spec
}

// load fetches records and roster in parallel and runs the filter pipeline
func (s *AttendanceServiceImpl) load(ctx context.Context, req attendance.FilterRequest) (*snapshot, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	spec, window, now := s.resolveFilter(req)

	var (
		records []attendance.AttendanceRecord
		roster  []attendant.Attendant
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := s.recordRepo.FetchAttendanceRecords(gCtx, pushdown(spec, window))
		if err != nil {
			return fmt.Errorf("failed to fetch attendance records: %w", err)
		}
		records = rows
		return nil
	})

	g.Go(func() error {
		rows, err := s.rosterRepo.FetchActiveAttendants(gCtx)
		if err != nil {
			return fmt.Errorf("failed to fetch active attendants: %w", err)
		}
		roster = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	filtered := ApplyFilter(records, spec, now)
	deduped, dropped := dedupe(filtered)
	s.metrics.RecordDeduplicated(dropped)

	return &snapshot{
		spec:    spec,
		window:  window,
		raw:     filtered,
		records: deduped,
		roster:  roster,
	}, nil
}

// GetDashboard returns totals, metrics, ranking and trend from one snapshot
func (s *AttendanceServiceImpl) GetDashboard(ctx context.Context, req attendance.DashboardRequest) (*attendance.DashboardResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, req.FilterRequest)
	if err != nil {
		return nil, err
	}

	totals := Summarize(snap.raw)
	s.metrics.RecordMalformed(totals.MalformedCount)

	metricsByAttendant := aggregateByAttendant(snap.records, snap.roster)
	ranking := RankAttendants(metricsByAttendant, snap.roster, s.resolveTopN(req.Top))

	granularity, trendWindow := s.trendShape(snap)
	trend, err := ComputeTrend(snap.records, granularity, trendWindow)
	if err != nil {
		return nil, err
	}

	return &attendance.DashboardResponse{
		Filter:      attendance.NewAppliedFilterResponse(snap.spec, snap.window),
		Totals:      attendance.NewTotalsResponse(totals),
		Metrics:     attendance.NewAttendantMetricResponses(metricsByAttendant),
		Ranking:     attendance.NewRankingResponse(ranking),
		Granularity: string(granularity),
		Trend:       attendance.NewTrendResponse(trend),
	}, nil
}

// GetMetrics returns one entry per roster member
func (s *AttendanceServiceImpl) GetMetrics(ctx context.Context, req attendance.FilterRequest) ([]attendance.AttendantMetricResponse, error) {
	snap, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	return attendance.NewAttendantMetricResponses(aggregateByAttendant(snap.records, snap.roster)), nil
}

// GetTrend returns the bucketed series for the requested granularity
func (s *AttendanceServiceImpl) GetTrend(ctx context.Context, req attendance.TrendRequest) ([]attendance.TrendPointResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, req.FilterRequest)
	if err != nil {
		return nil, err
	}

	granularity, window := s.trendShape(snap)
	if req.Granularity != "" {
		granularity = attendance.Granularity(req.Granularity)
	}
	if granularity == attendance.GranularityDay && BucketCount(window, granularity) > maxDailyTrendDays {
		slog.Debug("Daily trend promoted to monthly", "window", window.String())
		granularity = attendance.GranularityMonth
	}

	trend, err := ComputeTrend(snap.records, granularity, window)
	if err != nil {
		return nil, err
	}
	return attendance.NewTrendResponse(trend), nil
}

// GetRanking returns the full ranking and the top-N slice
func (s *AttendanceServiceImpl) GetRanking(ctx context.Context, req attendance.RankingRequest) (*attendance.RankingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, req.FilterRequest)
	if err != nil {
		return nil, err
	}

	ranking := RankAttendants(aggregateByAttendant(snap.records, snap.roster), snap.roster, s.resolveTopN(req.Top))
	resp := attendance.NewRankingResponse(ranking)
	return &resp, nil
}

// GetRecent returns the latest ingested records, newest first
func (s *AttendanceServiceImpl) GetRecent(ctx context.Context, limit int) ([]attendance.RecordResponse, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	records, err := s.recordRepo.FetchRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent records: %w", err)
	}

	out := make([]attendance.RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, attendance.NewRecordResponse(r))
	}
	return out, nil
}

// ListRecords returns one page of raw records, newest first. Duplicate rows are
// listed as stored; status and search narrow the filtered set.
func (s *AttendanceServiceImpl) ListRecords(ctx context.Context, req attendance.ListRecordsRequest) (*attendance.ListRecordsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	spec, window, now := s.resolveFilter(req.FilterRequest)
	rows, err := s.recordRepo.FetchAttendanceRecords(ctx, pushdown(spec, window))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendance records: %w", err)
	}
	filtered := ApplyFilter(rows, spec, now)

	status, byStatus := req.StatusResolution()
	search := strings.TrimSpace(req.Search)

	matched := make([]attendance.AttendanceRecord, 0, len(filtered))
	for i := len(filtered) - 1; i >= 0; i-- {
		rec := filtered[i]
		if byStatus && rec.Resolution() != status {
			continue
		}
		if search != "" && !rec.Matches(search) {
			continue
		}
		matched = append(matched, rec)
	}

	total := int64(len(matched))
	start := min((req.Page-1)*req.Limit, len(matched))
	end := min(start+req.Limit, len(matched))

	out := make([]attendance.RecordResponse, 0, end-start)
	for _, r := range matched[start:end] {
		out = append(out, attendance.NewRecordResponse(r))
	}

	return &attendance.ListRecordsResponse{
		TotalCount: total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: validator.TotalPages(total, req.Limit),
		Records:    out,
	}, nil
}

func (s *AttendanceServiceImpl) resolveTopN(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.topN
}

// trendShape picks the bucket granularity and chart window for a snapshot.
// Short windows chart by day, long or unbounded ones by month.
func (s *AttendanceServiceImpl) trendShape(snap *snapshot) (attendance.Granularity, attendance.DateRange) {
	window := snap.window
	if !window.IsBounded() && snap.spec.Year != 0 {
		window = attendance.DateRange{
			Start: time.Date(snap.spec.Year, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(snap.spec.Year, time.December, 31, 0, 0, 0, 0, time.UTC),
		}
	}
	if !window.IsBounded() {
		return attendance.GranularityMonth, window
	}
	if BucketCount(window, attendance.GranularityDay) <= maxDailyTrendDays {
		return attendance.GranularityDay, window
	}
	return attendance.GranularityMonth, window
}
