package http

import (
	"net/http"
	"strconv"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/handler/http/response"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/validator"
)

type AttendanceHandler interface {
	// GetDashboard returns totals, metrics, ranking and trend for a filter
	GetDashboard(w http.ResponseWriter, r *http.Request)
	// GetMetrics returns per-attendant metrics
	GetMetrics(w http.ResponseWriter, r *http.Request)
	// GetTrend returns the bucketed trend series
	GetTrend(w http.ResponseWriter, r *http.Request)
	// GetRanking returns the full ranking and its top slice
	GetRanking(w http.ResponseWriter, r *http.Request)
	// GetRecent returns the most recently ingested records
	GetRecent(w http.ResponseWriter, r *http.Request)
	// ListRecords returns one page of records filtered by status and search
	ListRecords(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{attendanceService: attendanceService}
}

// filterFromQuery reads the shared filter parameters
func filterFromQuery(r *http.Request) attendance.FilterRequest {
	q := r.URL.Query()
	return attendance.FilterRequest{
		Period:     q.Get("period"),
		Start:      q.Get("start"),
		End:        q.Get("end"),
		Attendant:  q.Get("attendant"),
		CompanyKey: q.Get("company_key"),
		Year:       q.Get("year"),
	}
}

// intParam parses an optional integer query parameter, 0 when absent
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validator.ValidationErrors{{Field: name, Message: name + " must be numeric"}}
	}
	return v, nil
}

// GetDashboard handles GET /attendance/dashboard
func (h *attendanceHandlerImpl) GetDashboard(w http.ResponseWriter, r *http.Request) {
	top, err := intParam(r, "top")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetDashboard(r.Context(), attendance.DashboardRequest{
		FilterRequest: filterFromQuery(r),
		Top:           top,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMetrics handles GET /attendance/metrics
func (h *attendanceHandlerImpl) GetMetrics(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetMetrics(r.Context(), filterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetTrend handles GET /attendance/trend
func (h *attendanceHandlerImpl) GetTrend(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetTrend(r.Context(), attendance.TrendRequest{
		FilterRequest: filterFromQuery(r),
		Granularity:   r.URL.Query().Get("granularity"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetRanking handles GET /attendance/ranking
func (h *attendanceHandlerImpl) GetRanking(w http.ResponseWriter, r *http.Request) {
	top, err := intParam(r, "top")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetRanking(r.Context(), attendance.RankingRequest{
		FilterRequest: filterFromQuery(r),
		Top:           top,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetRecent handles GET /attendance/recent
func (h *attendanceHandlerImpl) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetRecent(r.Context(), limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListRecords handles GET /attendance/records
func (h *attendanceHandlerImpl) ListRecords(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r, "page")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	limit, err := intParam(r, "limit")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ListRecords(r.Context(), attendance.ListRecordsRequest{
		FilterRequest: filterFromQuery(r),
		Status:        r.URL.Query().Get("status"),
		Search:        r.URL.Query().Get("search"),
		Page:          page,
		Limit:         limit,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Records, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}
