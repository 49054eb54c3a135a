package summary

import (
	"strings"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/validator"
)

type RefreshRequest struct {
	PeriodType string `json:"period_type" validate:"omitempty,oneof=diario semanal mensal anual"`
}

func (r *RefreshRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

// Target returns the requested period type, nil meaning all
func (r *RefreshRequest) Target() *PeriodType {
	if strings.TrimSpace(r.PeriodType) == "" {
		return nil
	}
	p := PeriodType(strings.TrimSpace(r.PeriodType))
	return &p
}

type QueryRequest struct {
	PeriodType string `json:"period_type" validate:"required,oneof=diario semanal mensal anual"`
	Start      string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End        string `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Attendant  string `json:"attendant" validate:"max=255"`
	Top        int    `json:"top" validate:"gte=0,lte=50"`
}

func (r *QueryRequest) Validate() error {
	errs := validator.Struct(r)
	errs = append(errs, attendance.ValidateRange(r.Start, r.End)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DateRange returns the requested range, unbounded when none was given
func (r *QueryRequest) DateRange() attendance.DateRange {
	if r.Start == "" || r.End == "" {
		return attendance.DateRange{}
	}
	start, _ := time.Parse(attendance.DateLayout, r.Start)
	end, _ := time.Parse(attendance.DateLayout, r.End)
	return attendance.NewDateRange(start, end)
}

type RowResponse struct {
	Attendant              string  `json:"attendant"`
	PeriodType             string  `json:"period_type"`
	PeriodStart            string  `json:"period_start"`
	PeriodEnd              string  `json:"period_end"`
	TotalCount             int     `json:"total_count"`
	TotalDurationMinutes   float64 `json:"total_duration_minutes"`
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
	FinalizedCount         int     `json:"finalized_count"`
	InProgressCount        int     `json:"in_progress_count"`
	PendingCount           int     `json:"pending_count"`
	ResolutionRatePercent  float64 `json:"resolution_rate_percent"`
	EfficiencyIndex        float64 `json:"efficiency_index"`
}

type QueryResponse struct {
	PeriodType string                     `json:"period_type"`
	Rows       []RowResponse              `json:"rows"`
	Ranking    attendance.RankingResponse `json:"ranking"`
}

type RefreshedWindowResponse struct {
	PeriodType  string `json:"period_type"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	RowCount    int    `json:"row_count"`
	DurationMs  int64  `json:"duration_ms"`
}

type RefreshResponse struct {
	RunID       string                    `json:"run_id"`
	StartedAt   time.Time                 `json:"started_at"`
	CompletedAt time.Time                 `json:"completed_at"`
	Windows     []RefreshedWindowResponse `json:"windows"`
}

func NewRowResponse(r Row) RowResponse {
	return RowResponse{
		Attendant:              r.Attendant,
		PeriodType:             string(r.PeriodType),
		PeriodStart:            r.PeriodStart.Format(attendance.DateLayout),
		PeriodEnd:              r.PeriodEnd.Format(attendance.DateLayout),
		TotalCount:             r.TotalCount,
		TotalDurationMinutes:   attendance.Round2(r.TotalDurationMinutes),
		AverageDurationMinutes: attendance.Round2(r.AverageDurationMinutes),
		FinalizedCount:         r.FinalizedCount,
		InProgressCount:        r.InProgressCount,
		PendingCount:           r.PendingCount,
		ResolutionRatePercent:  attendance.Round2(r.ResolutionRatePercent),
		EfficiencyIndex:        attendance.Round2(r.EfficiencyIndex),
	}
}

func NewRefreshResponse(report *RefreshReport) RefreshResponse {
	resp := RefreshResponse{
		RunID:       report.RunID,
		StartedAt:   report.StartedAt,
		CompletedAt: report.CompletedAt,
		Windows:     make([]RefreshedWindowResponse, 0, len(report.Windows)),
	}
	for _, w := range report.Windows {
		resp.Windows = append(resp.Windows, RefreshedWindowResponse{
			PeriodType:  string(w.Window.PeriodType),
			PeriodStart: w.Window.Range.Start.Format(attendance.DateLayout),
			PeriodEnd:   w.Window.Range.End.Format(attendance.DateLayout),
			RowCount:    w.RowCount,
			DurationMs:  w.Duration.Milliseconds(),
		})
	}
	return resp
}

// EventRefreshed is the SSE event name published after a committed refresh
const EventRefreshed = "summary.refreshed"

// RefreshEvent is streamed to subscribers after every committed refresh
type RefreshEvent struct {
	ID    string
	Event string
	Data  RefreshResponse
}
