package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/feedback"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the SQLSTATE raised by the attendance_id unique index
const uniqueViolation = "23505"

const feedbackColumns = `
	id::text, attendant, COALESCE(general_rating, 0), COALESCE(clarity_rating, 0),
	COALESCE(problem_resolved, ''), module, comments, attendance_id, company, company_key, requester, created_at`

type feedbackRepository struct {
	db *database.DB
}

func NewFeedbackRepository(db *database.DB) feedback.FeedbackRepository {
	return &feedbackRepository{db: db}
}

// FetchFeedbacks implements feedback.FeedbackRepository.
func (r *feedbackRepository) FetchFeedbacks(ctx context.Context, filter feedback.Filter) ([]feedback.Feedback, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.Since != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *filter.Since)
		argIdx++
	}
	if filter.Attendant != "" {
		conditions = append(conditions, fmt.Sprintf("attendant = $%d", argIdx))
		args = append(args, filter.Attendant)
		argIdx++
	}
	if filter.Module != "" {
		conditions = append(conditions, fmt.Sprintf("module = $%d", argIdx))
		args = append(args, filter.Module)
		argIdx++
	}
	if filter.ProblemResolved != "" {
		conditions = append(conditions, fmt.Sprintf("problem_resolved = $%d", argIdx))
		args = append(args, string(filter.ProblemResolved))
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM feedbacks
		%s
		ORDER BY created_at ASC, id ASC
	`, feedbackColumns, where)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feedbacks: %w", err)
	}
	defer rows.Close()

	return scanFeedbacks(rows)
}

// ListFeedbacks implements feedback.FeedbackRepository.
func (r *feedbackRepository) ListFeedbacks(ctx context.Context, filter feedback.ListFilter) ([]feedback.Feedback, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1=1"
	var args []interface{}
	argIdx := 1

	if filter.Attendant != "" {
		baseWhere += fmt.Sprintf(" AND attendant = $%d", argIdx)
		args = append(args, filter.Attendant)
		argIdx++
	}
	if filter.Module != "" {
		baseWhere += fmt.Sprintf(" AND module = $%d", argIdx)
		args = append(args, filter.Module)
		argIdx++
	}
	if filter.GeneralRating != 0 {
		baseWhere += fmt.Sprintf(" AND general_rating = $%d", argIdx)
		args = append(args, filter.GeneralRating)
		argIdx++
	}
	if filter.ProblemResolved != "" {
		baseWhere += fmt.Sprintf(" AND problem_resolved = $%d", argIdx)
		args = append(args, string(filter.ProblemResolved))
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM feedbacks WHERE "+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count feedbacks: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM feedbacks
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, feedbackColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feedbacks: %w", err)
	}
	defer rows.Close()

	out, err := scanFeedbacks(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetFeedbackByID implements feedback.FeedbackRepository.
func (r *feedbackRepository) GetFeedbackByID(ctx context.Context, id string) (feedback.Feedback, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, fmt.Sprintf(`SELECT %s FROM feedbacks WHERE id = $1`, feedbackColumns), id)
	if err != nil {
		return feedback.Feedback{}, fmt.Errorf("failed to get feedback by ID: %w", err)
	}
	defer rows.Close()

	out, err := scanFeedbacks(rows)
	if err != nil {
		return feedback.Feedback{}, err
	}
	if len(out) == 0 {
		return feedback.Feedback{}, feedback.ErrFeedbackNotFound
	}
	return out[0], nil
}

// CreateFeedback implements feedback.FeedbackRepository.
// The existence check gives a clean conflict in the common case; the unique
// index on attendance_id settles concurrent submissions.
func (r *feedbackRepository) CreateFeedback(ctx context.Context, f *feedback.Feedback) error {
	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if f.AttendanceID != nil {
			var exists bool
			err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM feedbacks WHERE attendance_id = $1)`, *f.AttendanceID,
			).Scan(&exists)
			if err != nil {
				return fmt.Errorf("failed to check existing feedback: %w", err)
			}
			if exists {
				return feedback.ErrDuplicateFeedback
			}
		}

		err := tx.QueryRow(ctx, `
			INSERT INTO feedbacks (attendant, general_rating, clarity_rating, problem_resolved,
				module, comments, attendance_id, company, company_key, requester)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id::text, created_at
		`,
			f.Attendant, f.GeneralRating, f.ClarityRating, string(f.ProblemResolved),
			f.Module, f.Comments, f.AttendanceID, f.Company, f.CompanyKey, f.Requester,
		).Scan(&f.ID, &f.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return feedback.ErrDuplicateFeedback
			}
			return fmt.Errorf("failed to insert feedback: %w", err)
		}
		return nil
	})
}

func scanFeedbacks(rows pgx.Rows) ([]feedback.Feedback, error) {
	var out []feedback.Feedback
	for rows.Next() {
		var f feedback.Feedback
		var resolved string
		if err := rows.Scan(
			&f.ID, &f.Attendant, &f.GeneralRating, &f.ClarityRating,
			&resolved, &f.Module, &f.Comments, &f.AttendanceID, &f.Company, &f.CompanyKey, &f.Requester, &f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		f.ProblemResolved = feedback.Resolution(resolved)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedbacks: %w", err)
	}
	return out, nil
}

// FetchActiveModules implements feedback.FeedbackRepository.
func (r *feedbackRepository) FetchActiveModules(ctx context.Context) ([]feedback.Module, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id::text, name FROM modules WHERE active = true ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch modules: %w", err)
	}
	defer rows.Close()

	var out []feedback.Module
	for rows.Next() {
		var m feedback.Module
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating modules: %w", err)
	}
	return out, nil
}
