package http

import (
	"encoding/json"
	"net/http"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/feedback"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type FeedbackHandler interface {
	// GetPerformance returns the feedback performance report
	GetPerformance(w http.ResponseWriter, r *http.Request)
	// ListFeedbacks returns one filtered page of feedback, newest first
	ListFeedbacks(w http.ResponseWriter, r *http.Request)
	// GetFeedback returns a single feedback by ID
	GetFeedback(w http.ResponseWriter, r *http.Request)
	// SubmitFeedback stores a customer survey answer
	SubmitFeedback(w http.ResponseWriter, r *http.Request)
}

type feedbackHandlerImpl struct {
	feedbackService feedback.FeedbackService
}

func NewFeedbackHandler(feedbackService feedback.FeedbackService) FeedbackHandler {
	return &feedbackHandlerImpl{feedbackService: feedbackService}
}

// GetPerformance handles GET /feedback/performance
func (h *feedbackHandlerImpl) GetPerformance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.feedbackService.GetPerformance(r.Context(), feedback.PerformanceRequest{
		Period:          q.Get("period"),
		Attendant:       q.Get("attendant"),
		Module:          q.Get("module"),
		ProblemResolved: q.Get("problem_resolved"),
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListFeedbacks handles GET /feedback
func (h *feedbackHandlerImpl) ListFeedbacks(w http.ResponseWriter, r *http.Request) {
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

	q := r.URL.Query()
	result, err := h.feedbackService.ListFeedbacks(r.Context(), feedback.ListFeedbackRequest{
		Attendant:       q.Get("attendant"),
		Module:          q.Get("module"),
		GeneralRating:   q.Get("general_rating"),
		ProblemResolved: q.Get("problem_resolved"),
		Page:            page,
		Limit:           limit,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Feedbacks, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// GetFeedback handles GET /feedback/{id}
func (h *feedbackHandlerImpl) GetFeedback(w http.ResponseWriter, r *http.Request) {
	result, err := h.feedbackService.GetFeedback(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SubmitFeedback handles POST /feedback
func (h *feedbackHandlerImpl) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedback.SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.feedbackService.SubmitFeedback(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Feedback submitted successfully", result)
}
