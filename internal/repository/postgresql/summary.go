package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/summary"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type summaryRepository struct {
	db *database.DB
}

func NewSummaryRepository(db *database.DB) summary.SummaryRepository {
	return &summaryRepository{db: db}
}

// WriteRows implements summary.SummaryRepository.
// The window's rows are deleted and reinserted in one transaction. An advisory
// lock on the window key serializes writers across processes.
func (r *summaryRepository) WriteRows(ctx context.Context, window summary.Window, runID string, rows []summary.Row) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, window.Key()); err != nil {
			return fmt.Errorf("failed to lock summary window: %w", err)
		}

		_, err := tx.Exec(ctx, `
			DELETE FROM attendance_summary
			WHERE period_type = $1 AND period_start = $2 AND period_end = $3
		`, string(window.PeriodType), window.Range.Start, window.Range.End)
		if err != nil {
			return fmt.Errorf("failed to clear summary window: %w", err)
		}

		batch := &pgx.Batch{}
		for _, row := range rows {
			batch.Queue(`
				INSERT INTO attendance_summary (
					attendant, period_type, period_start, period_end,
					total_count, total_duration_minutes, average_duration_minutes,
					finalized_count, in_progress_count, pending_count,
					resolution_rate_percent, efficiency_index
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			`,
				row.Attendant, string(row.PeriodType), row.PeriodStart, row.PeriodEnd,
				row.TotalCount, row.TotalDurationMinutes, row.AverageDurationMinutes,
				row.FinalizedCount, row.InProgressCount, row.PendingCount,
				row.ResolutionRatePercent, row.EfficiencyIndex,
			)
		}
		batch.Queue(`
			INSERT INTO attendance_summary_refresh (run_id, period_type, period_start, period_end, row_count, refreshed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, runID, string(window.PeriodType), window.Range.Start, window.Range.End, len(rows), time.Now().UTC())

		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("failed to insert summary rows: %w", err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("failed to close summary batch: %w", err)
		}
		return nil
	})
}

// ReadRows implements summary.SummaryRepository.
func (r *summaryRepository) ReadRows(ctx context.Context, periodType summary.PeriodType, dateRange attendance.DateRange, attendantFilter string) ([]summary.Row, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"period_type = $1"}
	args := []interface{}{string(periodType)}
	argIdx := 2

	if dateRange.IsBounded() {
		// any window overlapping the range, so a partial current period still matches
		conditions = append(conditions, fmt.Sprintf("period_start <= $%d AND period_end >= $%d", argIdx, argIdx+1))
		args = append(args, dateRange.End, dateRange.Start)
		argIdx += 2
	}
	if attendantFilter != "" && attendantFilter != attendance.FilterAnyName {
		conditions = append(conditions, fmt.Sprintf("attendant = $%d", argIdx))
		args = append(args, attendantFilter)
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT attendant, period_type, period_start, period_end,
			   total_count, total_duration_minutes, average_duration_minutes,
			   finalized_count, in_progress_count, pending_count,
			   resolution_rate_percent, efficiency_index
		FROM attendance_summary
		WHERE %s
		ORDER BY period_start ASC, attendant ASC
	`, strings.Join(conditions, " AND "))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary rows: %w", err)
	}
	defer rows.Close()

	var out []summary.Row
	for rows.Next() {
		var row summary.Row
		var pt string
		if err := rows.Scan(
			&row.Attendant, &pt, &row.PeriodStart, &row.PeriodEnd,
			&row.TotalCount, &row.TotalDurationMinutes, &row.AverageDurationMinutes,
			&row.FinalizedCount, &row.InProgressCount, &row.PendingCount,
			&row.ResolutionRatePercent, &row.EfficiencyIndex,
		); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		row.PeriodType = summary.PeriodType(pt)
		row.PeriodStart = row.PeriodStart.UTC()
		row.PeriodEnd = row.PeriodEnd.UTC()
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}
	return out, nil
}
