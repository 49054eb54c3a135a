package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// isoDate matches rows whose date column starts with YYYY-MM-DD. Only those
// are filtered by date in SQL; other formats are left for the in-memory filter.
const isoDate = `data::text ~ '^[0-9]{4}-[0-9]{2}-[0-9]{2}'`

const recordColumns = `
	id::text, COALESCE(id_atendimento, ''), COALESCE(atendente, ''), COALESCE(data::text, ''),
	tempo_total::float8, empresa, chave, tipo, resolvido, status, created_at`

type attendanceRecordRepository struct {
	db *database.DB
}

func NewAttendanceRecordRepository(db *database.DB) attendance.RecordRepository {
	return &attendanceRecordRepository{db: db}
}

// FetchAttendanceRecords implements attendance.RecordRepository.
// Rows come back in ingestion order so the earliest duplicate wins.
func (r *attendanceRecordRepository) FetchAttendanceRecords(ctx context.Context, spec attendance.FilterSpec) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	if spec.HasAttendant() {
		conditions = append(conditions, fmt.Sprintf("atendente = $%d", argIdx))
		args = append(args, spec.Attendant)
		argIdx++
	}
	if spec.HasCompanyKey() {
		conditions = append(conditions, fmt.Sprintf("chave = $%d", argIdx))
		args = append(args, spec.CompanyKey)
		argIdx++
	}
	if spec.Period.Range != nil && spec.Period.Range.IsBounded() {
		conditions = append(conditions, fmt.Sprintf(
			"(NOT %s OR left(data::text, 10) BETWEEN $%d AND $%d)", isoDate, argIdx, argIdx+1))
		args = append(args,
			spec.Period.Range.Start.Format(attendance.DateLayout),
			spec.Period.Range.End.Format(attendance.DateLayout))
		argIdx += 2
	}
	if spec.Year != 0 {
		conditions = append(conditions, fmt.Sprintf("(NOT %s OR left(data::text, 4) = $%d)", isoDate, argIdx))
		args = append(args, fmt.Sprintf("%04d", spec.Year))
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM atendimentos
		%s
		ORDER BY created_at ASC, id ASC
	`, recordColumns, where)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendance records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// FetchRecent implements attendance.RecordRepository.
func (r *attendanceRecordRepository) FetchRecent(ctx context.Context, limit int) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`
		SELECT %s
		FROM atendimentos
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, recordColumns)

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent attendance records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]attendance.AttendanceRecord, error) {
	var records []attendance.AttendanceRecord
	for rows.Next() {
		var rec attendance.AttendanceRecord
		if err := rows.Scan(
			&rec.ID, &rec.AttendanceID, &rec.AttendantName, &rec.Date,
			&rec.DurationMinutes, &rec.Company, &rec.CompanyKey, &rec.Type,
			&rec.Resolved, &rec.Status, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance records: %w", err)
	}
	return records, nil
}
