package feedback

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/validator"
)

// NoData is reported for best/worst labels when nothing qualifies
const NoData = "N/A"

type PerformanceRequest struct {
	Period          string `json:"period" validate:"omitempty,oneof=7days 30days 90days all"`
	Attendant       string `json:"attendant" validate:"max=255"`
	Module          string `json:"module" validate:"max=255"`
	ProblemResolved string `json:"problem_resolved" validate:"omitempty,oneof=sim parcialmente nao"`
}

func (r *PerformanceRequest) Validate() error {
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

// PeriodName returns the requested period, 7days when empty
func (r *PerformanceRequest) PeriodName() string {
	if r.Period == "" {
		return Period7Days
	}
	return r.Period
}

// ListFeedbackRequest filters the feedback listing. "all" or empty disables a filter.
type ListFeedbackRequest struct {
	Attendant       string `json:"attendant" validate:"max=255"`
	Module          string `json:"module" validate:"max=255"`
	GeneralRating   string `json:"general_rating" validate:"omitempty,oneof=all 1 2 3 4 5"`
	ProblemResolved string `json:"problem_resolved" validate:"omitempty,oneof=all sim parcialmente nao"`
	Page            int    `json:"page"`
	Limit           int    `json:"limit"`
}

func (r *ListFeedbackRequest) Validate() error {
	errs := validator.Struct(r)
	errs = append(errs, validator.Page(&r.Page, &r.Limit)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToListFilter converts a validated request into a ListFilter
func (r *ListFeedbackRequest) ToListFilter() ListFilter {
	filter := ListFilter{
		Attendant:       allToEmpty(r.Attendant),
		Module:          allToEmpty(r.Module),
		ProblemResolved: Resolution(allToEmpty(r.ProblemResolved)),
		Page:            r.Page,
		Limit:           r.Limit,
	}
	if rating, err := strconv.Atoi(allToEmpty(r.GeneralRating)); err == nil {
		filter.GeneralRating = rating
	}
	return filter
}

func allToEmpty(v string) string {
	v = strings.TrimSpace(v)
	if v == "all" {
		return ""
	}
	return v
}

// SubmitFeedbackRequest is the customer survey form
type SubmitFeedbackRequest struct {
	Attendant       string  `json:"attendant" validate:"required,max=255"`
	Module          string  `json:"module" validate:"required,max=255"`
	GeneralRating   int     `json:"general_rating" validate:"required,gte=1,lte=5"`
	ClarityRating   int     `json:"clarity_rating" validate:"required,gte=1,lte=5"`
	ProblemResolved string  `json:"problem_resolved" validate:"required,oneof=sim parcialmente nao"`
	AttendanceID    string  `json:"attendance_id" validate:"required,max=255"`
	Comments        *string `json:"comments" validate:"omitempty,max=2000"`
	Company         *string `json:"company" validate:"omitempty,max=255"`
	CompanyKey      *string `json:"company_key" validate:"omitempty,max=255"`
	Requester       *string `json:"requester" validate:"omitempty,max=255"`
}

func (r *SubmitFeedbackRequest) Validate() error {
	r.Attendant = strings.TrimSpace(r.Attendant)
	r.Module = strings.TrimSpace(r.Module)
	r.AttendanceID = strings.TrimSpace(r.AttendanceID)
	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

// ToFeedback builds the row to insert, dropping blank optional fields
func (r *SubmitFeedbackRequest) ToFeedback() *Feedback {
	module := r.Module
	attendanceID := r.AttendanceID
	return &Feedback{
		Attendant:       r.Attendant,
		GeneralRating:   r.GeneralRating,
		ClarityRating:   r.ClarityRating,
		ProblemResolved: Resolution(r.ProblemResolved),
		Module:          &module,
		Comments:        blankToNil(r.Comments),
		AttendanceID:    &attendanceID,
		Company:         blankToNil(r.Company),
		CompanyKey:      blankToNil(r.CompanyKey),
		Requester:       blankToNil(r.Requester),
	}
}

func blankToNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type FeedbackResponse struct {
	ID              string    `json:"id"`
	Attendant       string    `json:"attendant"`
	Module          *string   `json:"module"`
	GeneralRating   int       `json:"general_rating"`
	ClarityRating   int       `json:"clarity_rating"`
	ProblemResolved string    `json:"problem_resolved"`
	AttendanceID    *string   `json:"attendance_id"`
	Comments        *string   `json:"comments"`
	Company         *string   `json:"company"`
	CompanyKey      *string   `json:"company_key"`
	Requester       *string   `json:"requester"`
	CreatedAt       time.Time `json:"created_at"`
}

type ListFeedbackResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Feedbacks  []FeedbackResponse `json:"feedbacks"`
}

func NewFeedbackResponse(f Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:              f.ID,
		Attendant:       f.Attendant,
		Module:          f.Module,
		GeneralRating:   f.GeneralRating,
		ClarityRating:   f.ClarityRating,
		ProblemResolved: string(f.ProblemResolved),
		AttendanceID:    f.AttendanceID,
		Comments:        f.Comments,
		Company:         f.Company,
		CompanyKey:      f.CompanyKey,
		Requester:       f.Requester,
		CreatedAt:       f.CreatedAt,
	}
}

type OverviewResponse struct {
	FeedbackCount  int     `json:"feedback_count"`
	AverageRating  float64 `json:"average_rating"`
	AverageClarity float64 `json:"average_clarity"`
	ResolutionRate float64 `json:"resolution_rate"`
}

type DistributionEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type AttendantPerformanceResponse struct {
	Attendant      string  `json:"attendant"`
	FeedbackCount  int     `json:"feedback_count"`
	AverageRating  float64 `json:"average_rating"`
	AverageClarity float64 `json:"average_clarity"`
	Solved         int     `json:"solved"`
	Partial        int     `json:"partial"`
	NotSolved      int     `json:"not_solved"`
	ResolutionRate float64 `json:"resolution_rate"`
	Score          float64 `json:"score"`
}

type ModulePerformanceResponse struct {
	Module         string  `json:"module"`
	FeedbackCount  int     `json:"feedback_count"`
	AverageRating  float64 `json:"average_rating"`
	AverageClarity float64 `json:"average_clarity"`
	ResolutionRate float64 `json:"resolution_rate"`
}

type TendencyPointResponse struct {
	Date          string  `json:"date"`
	FeedbackCount int     `json:"feedback_count"`
	AverageRating float64 `json:"average_rating"`
}

type PerformanceResponse struct {
	Period                 string                         `json:"period"`
	Overview               OverviewResponse               `json:"overview"`
	RatingDistribution     []DistributionEntry            `json:"rating_distribution"`
	ResolutionDistribution []DistributionEntry            `json:"resolution_distribution"`
	Attendants             []AttendantPerformanceResponse `json:"attendants"`
	Modules                []ModulePerformanceResponse    `json:"modules"`
	BestAttendant          string                         `json:"best_attendant"`
	WorstAttendant         string                         `json:"worst_attendant"`
	BestModule             string                         `json:"best_module"`
	Tendency               []TendencyPointResponse        `json:"tendency"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func NewPerformanceResponse(period string, p *Performance) *PerformanceResponse {
	resp := &PerformanceResponse{
		Period: period,
		Overview: OverviewResponse{
			FeedbackCount:  p.Overview.FeedbackCount,
			AverageRating:  round1(p.Overview.AverageRating),
			AverageClarity: round1(p.Overview.AverageClarity),
			ResolutionRate: round1(p.Overview.ResolutionRate),
		},
		RatingDistribution:     make([]DistributionEntry, 0, len(p.RatingDistribution)),
		ResolutionDistribution: make([]DistributionEntry, 0, len(Resolutions)),
		Attendants:             make([]AttendantPerformanceResponse, 0, len(p.Attendants)),
		Modules:                make([]ModulePerformanceResponse, 0, len(p.Modules)),
		BestAttendant:          p.BestAttendant,
		WorstAttendant:         p.WorstAttendant,
		BestModule:             p.BestModule,
		Tendency:               make([]TendencyPointResponse, 0, len(p.Tendency)),
	}

	for i, n := range p.RatingDistribution {
		resp.RatingDistribution = append(resp.RatingDistribution, DistributionEntry{
			Key:   strconv.Itoa(i + 1),
			Count: n,
		})
	}
	for _, r := range Resolutions {
		resp.ResolutionDistribution = append(resp.ResolutionDistribution, DistributionEntry{
			Key:   string(r),
			Count: p.ResolutionDistribution[r],
		})
	}
	for _, a := range p.Attendants {
		resp.Attendants = append(resp.Attendants, AttendantPerformanceResponse{
			Attendant:      a.Attendant,
			FeedbackCount:  a.FeedbackCount,
			AverageRating:  round1(a.AverageRating),
			AverageClarity: round1(a.AverageClarity),
			Solved:         a.Solved,
			Partial:        a.Partial,
			NotSolved:      a.NotSolved,
			ResolutionRate: round1(a.ResolutionRate),
			Score:          round1(a.Score),
		})
	}
	for _, m := range p.Modules {
		resp.Modules = append(resp.Modules, ModulePerformanceResponse{
			Module:         m.Module,
			FeedbackCount:  m.FeedbackCount,
			AverageRating:  round1(m.AverageRating),
			AverageClarity: round1(m.AverageClarity),
			ResolutionRate: round1(m.ResolutionRate),
		})
	}
	for _, t := range p.Tendency {
		resp.Tendency = append(resp.Tendency, TendencyPointResponse{
			Date:          t.Date.Format("02/01"),
			FeedbackCount: t.FeedbackCount,
			AverageRating: round1(t.AverageRating),
		})
	}
	return resp
}
