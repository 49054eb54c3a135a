package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendant"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecordRepo struct {
	mu       sync.Mutex
	records  []attendance.AttendanceRecord
	err      error
	lastSpec attendance.FilterSpec
	calls    int
}

func (f *fakeRecordRepo) FetchAttendanceRecords(_ context.Context, spec attendance.FilterSpec) ([]attendance.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastSpec = spec
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeRecordRepo) FetchRecent(_ context.Context, limit int) ([]attendance.AttendanceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.records) {
		limit = len(f.records)
	}
	return f.records[:limit], nil
}

type fakeRosterRepo struct {
	roster []attendant.Attendant
	err    error
}

func (f *fakeRosterRepo) FetchActiveAttendants(_ context.Context) ([]attendant.Attendant, error) {
	return f.roster, f.err
}

func newTestService(records []attendance.AttendanceRecord, team []attendant.Attendant) (attendance.AttendanceService, *fakeRecordRepo) {
	recordRepo := &fakeRecordRepo{records: records}
	svc := NewAttendanceService(recordRepo, &fakeRosterRepo{roster: team},
		WithClock(func() time.Time { return fixedNow }),
		WithTopN(3),
	)
	return svc, recordRepo
}

func TestAttendanceService_GetDashboard(t *testing.T) {
	records := []attendance.AttendanceRecord{
		record("1", "Ana", "2024-03-13", 10),
		record("1", "Ana", "2024-03-13", 10),
		record("2", "Ana", "2024-03-12", 20),
		record("3", "Bia", "2024-03-11", 60),
	}
	records[0].Status = strPtr("Finalizado")
	svc, repo := newTestService(records, roster("Ana", "Bia", "Caio"))

	resp, err := svc.GetDashboard(context.Background(), attendance.DashboardRequest{
		FilterRequest: attendance.FilterRequest{Period: "7d"},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, resp.Totals.TotalCount)
	assert.Equal(t, 1, resp.Totals.DuplicateCount)
	assert.Equal(t, 1, resp.Totals.FinalizedCount)
	assert.Equal(t, 30.0, resp.Totals.AverageDurationMinutes)

	require.Len(t, resp.Metrics, 3)
	assert.Equal(t, "Ana", resp.Metrics[0].Attendant)
	assert.Equal(t, 2, resp.Metrics[0].TotalCount)
	assert.Equal(t, 0.13, resp.Metrics[0].EfficiencyIndex)

	assert.Equal(t, []int{1, 2, 3}, []int{resp.Ranking.All[0].Position, resp.Ranking.All[1].Position, resp.Ranking.All[2].Position})
	assert.Equal(t, "Ana", resp.Ranking.Top[0].Attendant)
	assert.Equal(t, "Caio", resp.Ranking.All[2].Attendant)

	assert.Equal(t, "day", resp.Granularity)
	assert.Len(t, resp.Trend, 7)
	assert.Equal(t, "13/03", resp.Trend[6].BucketKey)
	assert.Equal(t, 1, resp.Trend[6].Count)

	require.NotNil(t, resp.Filter.Start)
	assert.Equal(t, "2024-03-07", *resp.Filter.Start)

	// the named window is pushed down as a concrete range
	require.NotNil(t, repo.lastSpec.Period.Range)
	assert.Equal(t, date(2024, 3, 7), repo.lastSpec.Period.Range.Start)
}

func TestAttendanceService_UnknownPeriodFallsBackToAll(t *testing.T) {
	records := []attendance.AttendanceRecord{
		record("1", "Ana", "2020-01-01", 10),
		record("2", "Ana", "2024-03-13", 10),
	}
	svc, repo := newTestService(records, roster("Ana"))

	resp, err := svc.GetDashboard(context.Background(), attendance.DashboardRequest{
		FilterRequest: attendance.FilterRequest{Period: "fortnight"},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Totals.TotalCount)
	assert.Equal(t, "all", resp.Filter.Period)
	assert.Equal(t, "month", resp.Granularity)
	assert.Nil(t, repo.lastSpec.Period.Range)
}

func TestAttendanceService_ValidationErrors(t *testing.T) {
	svc, repo := newTestService(nil, nil)

	_, err := svc.GetMetrics(context.Background(), attendance.FilterRequest{Start: "2024-03-10"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "start")

	_, err = svc.GetTrend(context.Background(), attendance.TrendRequest{Granularity: "hour"})
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "granularity")

	_, err = svc.GetMetrics(context.Background(), attendance.FilterRequest{Start: "2024-03-10", End: "2024-03-01"})
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, attendance.ErrInvalidDateRange.Error(), verrs.ToMap()["end"])

	assert.Zero(t, repo.calls)
}

func TestAttendanceService_RejectsOutOfRangeDates(t *testing.T) {
	svc, repo := newTestService(nil, nil)

	cases := []struct {
		name  string
		req   attendance.FilterRequest
		field string
	}{
		{"zero start date", attendance.FilterRequest{Start: "0001-01-01", End: "2024-03-01"}, "start"},
		{"year before 1000", attendance.FilterRequest{Start: "0999-12-31", End: "1000-01-05"}, "start"},
		{"range over a century", attendance.FilterRequest{Start: "1000-01-01", End: "9999-12-31"}, "end"},
		{"negative year filter", attendance.FilterRequest{Year: "-123"}, "year"},
		{"year filter before 1000", attendance.FilterRequest{Year: "0999"}, "year"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GetMetrics(context.Background(), tc.req)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), tc.field)
		})
	}
	assert.Zero(t, repo.calls)
}

func TestAttendanceService_GetTrendPromotesLongDailyWindows(t *testing.T) {
	records := []attendance.AttendanceRecord{
		record("1", "Ana", "2001-06-15", 10),
		record("2", "Ana", "2024-02-01", 20),
	}
	svc, _ := newTestService(records, roster("Ana"))

	points, err := svc.GetTrend(context.Background(), attendance.TrendRequest{
		FilterRequest: attendance.FilterRequest{Start: "2000-01-01", End: "2024-12-31"},
		Granularity:   "day",
	})

	require.NoError(t, err)
	require.Len(t, points, 25*12)
	assert.Equal(t, "01/2000", points[0].BucketKey)
	assert.Equal(t, "12/2024", points[len(points)-1].BucketKey)
}

func TestAttendanceService_GetTrendKeepsShortDailyWindows(t *testing.T) {
	svc, _ := newTestService(nil, roster("Ana"))

	points, err := svc.GetTrend(context.Background(), attendance.TrendRequest{
		FilterRequest: attendance.FilterRequest{Start: "2024-01-01", End: "2024-03-30"},
		Granularity:   "day",
	})

	require.NoError(t, err)
	assert.Len(t, points, 90)
	assert.Equal(t, "01/01", points[0].BucketKey)
}

func TestAttendanceService_FetchErrorsPropagate(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewAttendanceService(&fakeRecordRepo{}, &fakeRosterRepo{err: boom})

	_, err := svc.GetMetrics(context.Background(), attendance.FilterRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestAttendanceService_GetTrendExplicitGranularity(t *testing.T) {
	records := []attendance.AttendanceRecord{
		record("1", "Ana", "2024-01-31", 10),
		record("2", "Ana", "2024-02-01", 10),
	}
	svc, _ := newTestService(records, roster("Ana"))

	points, err := svc.GetTrend(context.Background(), attendance.TrendRequest{
		FilterRequest: attendance.FilterRequest{Start: "2024-01-01", End: "2024-02-29"},
		Granularity:   "month",
	})

	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "01/2024", points[0].BucketKey)
	assert.Equal(t, "02/2024", points[1].BucketKey)
}

func TestAttendanceService_GetRanking(t *testing.T) {
	records := []attendance.AttendanceRecord{
		record("1", "Bia", "2024-03-13", 10),
		record("2", "Ana", "2024-03-13", 5),
	}
	svc, _ := newTestService(records, roster("Ana", "Bia", "Caio", "Dani"))

	resp, err := svc.GetRanking(context.Background(), attendance.RankingRequest{Top: 2})

	require.NoError(t, err)
	require.Len(t, resp.All, 4)
	require.Len(t, resp.Top, 2)
	assert.Equal(t, "Ana", resp.Top[0].Attendant)
	assert.Equal(t, "Bia", resp.Top[1].Attendant)
}

func TestAttendanceService_GetRecentClampsLimit(t *testing.T) {
	var records []attendance.AttendanceRecord
	for i := 0; i < 150; i++ {
		records = append(records, record(string(rune(0x100+i)), "Ana", "2024-03-13", 1))
	}
	svc, _ := newTestService(records, nil)

	got, err := svc.GetRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, defaultRecentLimit)

	got, err = svc.GetRecent(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, got, maxRecentLimit)
}

func TestAttendanceService_ListRecords(t *testing.T) {
	done := record("A1", "Ana", "2024-03-11", 10)
	done.Resolved = boolPtr(true)
	closed := record("A2", "Bia", "2024-03-12", 5)
	closed.Status = strPtr(attendance.StatusFinalized)
	closed.Company = strPtr("Padaria Central")
	pending := record("A3", "Ana", "2024-03-12", 7)
	pending.Status = strPtr(attendance.StatusPending)
	open := record("A4", "Caio", "2024-03-13", 3)
	open.Status = strPtr(attendance.StatusInProgress)
	open.CompanyKey = strPtr("KEY-77")
	old := record("A5", "Ana", "2023-12-01", 4)

	// ingestion order, oldest first
	svc, repo := newTestService([]attendance.AttendanceRecord{old, done, closed, pending, open}, nil)
	ctx := context.Background()

	t.Run("newest first with default paging", func(t *testing.T) {
		resp, err := svc.ListRecords(ctx, attendance.ListRecordsRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(5), resp.TotalCount)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, validator.DefaultPageLimit, resp.Limit)
		require.Len(t, resp.Records, 5)
		assert.Equal(t, "A4", resp.Records[0].AttendanceID)
		assert.Equal(t, "A5", resp.Records[4].AttendanceID)
	})

	t.Run("finalizado covers the flag and the status column", func(t *testing.T) {
		resp, err := svc.ListRecords(ctx, attendance.ListRecordsRequest{Status: attendance.RecordStatusFinalized})
		require.NoError(t, err)
		require.Len(t, resp.Records, 2)
		assert.Equal(t, "A2", resp.Records[0].AttendanceID)
		assert.Equal(t, "A1", resp.Records[1].AttendanceID)
	})

	t.Run("pendente and andamento", func(t *testing.T) {
		resp, err := svc.ListRecords(ctx, attendance.ListRecordsRequest{Status: attendance.RecordStatusPending})
		require.NoError(t, err)
		require.Len(t, resp.Records, 1)
		assert.Equal(t, "A3", resp.Records[0].AttendanceID)

		resp, err = svc.ListRecords(ctx, attendance.ListRecordsRequest{Status: attendance.RecordStatusInProgress})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.TotalCount, "a record with no status is in progress")
	})

	t.Run("search ignores case across attendant, id, company and key", func(t *testing.T) {
		for term, want := range map[string]string{"caio": "A4", "a3": "A3", "padaria": "A2", "key-77": "A4"} {
			resp, err := svc.ListRecords(ctx, attendance.ListRecordsRequest{Search: term})
			require.NoError(t, err)
			require.Len(t, resp.Records, 1, term)
			assert.Equal(t, want, resp.Records[0].AttendanceID, term)
		}
	})

	t.Run("period and attendant narrow before paging", func(t *testing.T) {
		resp, err := svc.ListRecords(ctx, attendance.ListRecordsRequest{
			FilterRequest: attendance.FilterRequest{Period: attendance.PeriodWeek, Attendant: "Ana"},
			Limit:         1,
			Page:          2,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.TotalCount)
		assert.Equal(t, 2, resp.TotalPages)
		require.Len(t, resp.Records, 1)
		assert.Equal(t, "A1", resp.Records[0].AttendanceID)
		require.NotNil(t, repo.lastSpec.Period.Range, "the week is pushed down as dates")
	})

	t.Run("a page past the end is empty", func(t *testing.T) {
		resp, err := svc.ListRecords(ctx, attendance.ListRecordsRequest{Page: 9})
		require.NoError(t, err)
		assert.Empty(t, resp.Records)
		assert.Equal(t, int64(5), resp.TotalCount)
	})

	t.Run("invalid status and paging", func(t *testing.T) {
		_, err := svc.ListRecords(ctx, attendance.ListRecordsRequest{Status: "cancelado", Page: -1})
		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "status")
		assert.Contains(t, verrs.ToMap(), "page")
	})
}
