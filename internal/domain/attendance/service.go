package attendance

import "context"

// AttendanceService exposes the metrics dashboards over raw attendance records
type AttendanceService interface {
	// GetDashboard returns totals, per-attendant metrics, ranking and trend in one call
	GetDashboard(ctx context.Context, req DashboardRequest) (*DashboardResponse, error)

	// GetMetrics returns one metric entry per roster member
	GetMetrics(ctx context.Context, req FilterRequest) ([]AttendantMetricResponse, error)

	// GetTrend returns a zero-filled, chronologically sorted bucket series
	GetTrend(ctx context.Context, req TrendRequest) ([]TrendPointResponse, error)

	// GetRanking returns the full ranking and its top-N slice
	GetRanking(ctx context.Context, req RankingRequest) (*RankingResponse, error)

	// GetRecent returns the latest ingested records
	GetRecent(ctx context.Context, limit int) ([]RecordResponse, error)

	// ListRecords returns one page of raw records, newest first
	ListRecords(ctx context.Context, req ListRecordsRequest) (*ListRecordsResponse, error)
}
