package attendance

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/validator"
)

// ========================================
// REQUEST DTOs
// ========================================

// FilterRequest carries the raw query parameters of the filter pipeline
type FilterRequest struct {
	Period     string `json:"period"`
	Start      string `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End        string `json:"end" validate:"omitempty,datetime=2006-01-02"`
	Attendant  string `json:"attendant" validate:"max=255"`
	CompanyKey string `json:"company_key" validate:"max=255"`
	Year       string `json:"year" validate:"omitempty,number,len=4"`
}

func (r *FilterRequest) Validate() error {
	errs := validator.Struct(r)
	errs = append(errs, r.validateRange()...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validateRange checks the explicit range and the year filter
func (r *FilterRequest) validateRange() validator.ValidationErrors {
	errs := ValidateRange(r.Start, r.End)
	if year, err := strconv.Atoi(r.Year); err == nil && year < MinYear {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be %d or later", MinYear),
		})
	}
	return errs
}

// ValidateRange checks that an explicit start/end pair is complete, ordered,
// within supported years and not longer than MaxRangeDays
func ValidateRange(start, end string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if (start == "") != (end == "") {
		errs = append(errs, validator.ValidationError{
			Field:   "start",
			Message: "start and end must be provided together",
		})
		return errs
	}
	if start == "" {
		return errs
	}

	s, okStart := validator.IsValidDate(start)
	e, okEnd := validator.IsValidDate(end)
	if okStart && s.Year() < MinYear {
		errs = append(errs, validator.ValidationError{
			Field:   "start",
			Message: fmt.Sprintf("start must be in year %d or later", MinYear),
		})
	}
	if okEnd && e.Year() < MinYear {
		errs = append(errs, validator.ValidationError{
			Field:   "end",
			Message: fmt.Sprintf("end must be in year %d or later", MinYear),
		})
	}
	if len(errs) > 0 || !okStart || !okEnd {
		return errs
	}

	if s.After(e) {
		errs = append(errs, validator.ValidationError{
			Field:   "end",
			Message: ErrInvalidDateRange.Error(),
		})
	} else if e.Sub(s) > MaxRangeDays*24*time.Hour {
		errs = append(errs, validator.ValidationError{
			Field:   "end",
			Message: ErrDateRangeTooLong.Error(),
		})
	}
	return errs
}

// ToFilterSpec converts a validated request into a FilterSpec.
// An explicit start/end range takes precedence over a named period.
func (r *FilterRequest) ToFilterSpec() FilterSpec {
	spec := FilterSpec{
		Period:     PeriodWindow{Name: strings.ToLower(strings.TrimSpace(r.Period))},
		Attendant:  strings.TrimSpace(r.Attendant),
		CompanyKey: strings.TrimSpace(r.CompanyKey),
	}
	if r.Start != "" && r.End != "" {
		start, _ := time.Parse(DateLayout, r.Start)
		end, _ := time.Parse(DateLayout, r.End)
		rng := NewDateRange(start, end)
		spec.Period.Range = &rng
	}
	if year, err := strconv.Atoi(r.Year); err == nil {
		spec.Year = year
	}
	return spec
}

type DashboardRequest struct {
	FilterRequest
	Top int `json:"top" validate:"gte=0,lte=50"`
}

func (r *DashboardRequest) Validate() error {
	errs := validator.Struct(r)
	errs = append(errs, r.validateRange()...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TrendRequest struct {
	FilterRequest
	Granularity string `json:"granularity" validate:"omitempty,oneof=day month"`
}

func (r *TrendRequest) Validate() error {
	errs := validator.Struct(r)
	errs = append(errs, r.validateRange()...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RankingRequest struct {
	FilterRequest
	Top int `json:"top" validate:"gte=0,lte=50"`
}

func (r *RankingRequest) Validate() error {
	errs := validator.Struct(r)
	errs = append(errs, r.validateRange()...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Record status filter values
const (
	RecordStatusAll        = "all"
	RecordStatusFinalized  = "finalizado"
	RecordStatusInProgress = "andamento"
	RecordStatusPending    = "pendente"
)

type ListRecordsRequest struct {
	FilterRequest
	Status string `json:"status" validate:"omitempty,oneof=all finalizado andamento pendente"`
	Search string `json:"search" validate:"max=255"`
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

func (r *ListRecordsRequest) Validate() error {
	errs := validator.Struct(r)
	errs = append(errs, r.validateRange()...)
	errs = append(errs, validator.Page(&r.Page, &r.Limit)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// StatusResolution maps the status filter onto a Resolution. ok is false when
// every status is listed.
func (r *ListRecordsRequest) StatusResolution() (res Resolution, ok bool) {
	switch r.Status {
	case RecordStatusFinalized:
		return ResolutionResolved, true
	case RecordStatusInProgress:
		return ResolutionInProgress, true
	case RecordStatusPending:
		return ResolutionPending, true
	}
	return ResolutionInProgress, false
}

// ========================================
// RESPONSE DTOs
// ========================================

type AppliedFilterResponse struct {
	Period     string  `json:"period"`
	Start      *string `json:"start"`
	End        *string `json:"end"`
	Attendant  string  `json:"attendant,omitempty"`
	CompanyKey string  `json:"company_key,omitempty"`
	Year       int     `json:"year,omitempty"`
}

type TotalsResponse struct {
	TotalCount             int     `json:"total_count"`
	FinalizedCount         int     `json:"finalized_count"`
	InProgressCount        int     `json:"in_progress_count"`
	PendingCount           int     `json:"pending_count"`
	MalformedCount         int     `json:"malformed_count"`
	DuplicateCount         int     `json:"duplicate_count"`
	TotalDurationMinutes   float64 `json:"total_duration_minutes"`
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
	ResolutionRatePercent  float64 `json:"resolution_rate_percent"`
}

type AttendantMetricResponse struct {
	Attendant              string  `json:"attendant"`
	PhotoURL               *string `json:"photo_url"`
	TotalCount             int     `json:"total_count"`
	TotalDurationMinutes   float64 `json:"total_duration_minutes"`
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
	EfficiencyIndex        float64 `json:"efficiency_index"`
	ResolvedCount          int     `json:"resolved_count"`
	PendingCount           int     `json:"pending_count"`
	InProgressCount        int     `json:"in_progress_count"`
	ResolutionRatePercent  float64 `json:"resolution_rate_percent"`
}

type RankedAttendantResponse struct {
	Position int `json:"position"`
	AttendantMetricResponse
}

type RankingResponse struct {
	All []RankedAttendantResponse `json:"all"`
	Top []RankedAttendantResponse `json:"top"`
}

type TrendPointResponse struct {
	BucketKey              string  `json:"bucket_key"`
	Count                  int     `json:"count"`
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
}

type RecordResponse struct {
	ID              string    `json:"id"`
	AttendanceID    string    `json:"attendance_id"`
	Attendant       string    `json:"attendant"`
	Date            string    `json:"date"`
	DurationMinutes *float64  `json:"duration_minutes"`
	Company         *string   `json:"company"`
	CompanyKey      *string   `json:"company_key"`
	Type            *string   `json:"type"`
	Resolution      string    `json:"resolution"`
	Status          *string   `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type ListRecordsResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Records    []RecordResponse `json:"records"`
}

type DashboardResponse struct {
	Filter      AppliedFilterResponse     `json:"filter"`
	Totals      TotalsResponse            `json:"totals"`
	Metrics     []AttendantMetricResponse `json:"metrics"`
	Ranking     RankingResponse           `json:"ranking"`
	Granularity string                    `json:"granularity"`
	Trend       []TrendPointResponse      `json:"trend"`
}

// ========================================
// MAPPERS (rounding happens here and nowhere else)
// ========================================

// Round2 rounds to two decimal places for presentation
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func NewAttendantMetricResponse(m AttendantMetric) AttendantMetricResponse {
	return AttendantMetricResponse{
		Attendant:              m.AttendantName,
		PhotoURL:               m.PhotoURL,
		TotalCount:             m.TotalCount,
		TotalDurationMinutes:   Round2(m.TotalDurationMinutes),
		AverageDurationMinutes: Round2(m.AverageDurationMinutes),
		EfficiencyIndex:        Round2(m.EfficiencyIndex),
		ResolvedCount:          m.ResolvedCount,
		PendingCount:           m.PendingCount,
		InProgressCount:        m.InProgressCount,
		ResolutionRatePercent:  Round2(m.ResolutionRatePercent),
	}
}

func NewAttendantMetricResponses(metrics []AttendantMetric) []AttendantMetricResponse {
	out := make([]AttendantMetricResponse, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, NewAttendantMetricResponse(m))
	}
	return out
}

func NewRankingResponse(r Ranking) RankingResponse {
	return RankingResponse{
		All: newRankedResponses(r.All),
		Top: newRankedResponses(r.Top),
	}
}

func newRankedResponses(ranked []RankedAttendant) []RankedAttendantResponse {
	out := make([]RankedAttendantResponse, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, RankedAttendantResponse{
			Position:                r.Position,
			AttendantMetricResponse: NewAttendantMetricResponse(r.AttendantMetric),
		})
	}
	return out
}

func NewTrendResponse(points []TrendPoint) []TrendPointResponse {
	out := make([]TrendPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, TrendPointResponse{
			BucketKey:              p.BucketKey,
			Count:                  p.Count,
			AverageDurationMinutes: Round2(p.AverageDurationMinutes),
		})
	}
	return out
}

func NewTotalsResponse(t Totals) TotalsResponse {
	return TotalsResponse{
		TotalCount:             t.TotalCount,
		FinalizedCount:         t.FinalizedCount,
		InProgressCount:        t.InProgressCount,
		PendingCount:           t.PendingCount,
		MalformedCount:         t.MalformedCount,
		DuplicateCount:         t.DuplicateCount,
		TotalDurationMinutes:   Round2(t.TotalDurationMinutes),
		AverageDurationMinutes: Round2(t.AverageDurationMinutes),
		ResolutionRatePercent:  Round2(t.ResolutionRatePercent),
	}
}

func NewRecordResponse(r AttendanceRecord) RecordResponse {
	return RecordResponse{
		ID:              r.ID,
		AttendanceID:    r.AttendanceID,
		Attendant:       r.AttendantName,
		Date:            r.Date,
		DurationMinutes: r.DurationMinutes,
		Company:         r.Company,
		CompanyKey:      r.CompanyKey,
		Type:            r.Type,
		Resolution:      r.Resolution().String(),
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
	}
}

func NewAppliedFilterResponse(spec FilterSpec, window DateRange) AppliedFilterResponse {
	resp := AppliedFilterResponse{
		Period:     spec.Period.Name,
		Attendant:  spec.Attendant,
		CompanyKey: spec.CompanyKey,
		Year:       spec.Year,
	}
	if spec.Period.Range != nil {
		resp.Period = "custom"
	} else if resp.Period == "" {
		resp.Period = PeriodAll
	}
	if window.IsBounded() {
		start := window.Start.Format(DateLayout)
		end := window.End.Format(DateLayout)
		resp.Start, resp.End = &start, &end
	}
	return resp
}
