package attendance

import "context"

// RecordRepository reads raw attendance rows. Rows are not deduplicated by the
// source and come back ordered by created_at, then id.
type RecordRepository interface {
	// FetchAttendanceRecords returns the rows matching the filter
	FetchAttendanceRecords(ctx context.Context, filter FilterSpec) ([]AttendanceRecord, error)

	// FetchRecent returns the latest rows by ingestion time
	FetchRecent(ctx context.Context, limit int) ([]AttendanceRecord, error)
}
