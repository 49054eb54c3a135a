package response

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/attendance"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/auth"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/feedback"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/summary"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrInvalidGranularity),
		errors.Is(err, attendance.ErrInvalidDateRange),
		errors.Is(err, attendance.ErrInvalidYear),
		errors.Is(err, attendance.ErrTrendTooLarge):
		BadRequest(w, err.Error(), nil)

	// Summary domain errors
	case errors.Is(err, summary.ErrInvalidPeriodType):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, summary.ErrCacheCommitFailure):
		ServiceUnavailable(w, "Summary cache refresh failed, retry later")
	case errors.Is(err, summary.ErrRefreshCancelled), errors.Is(err, context.Canceled):
		ServiceUnavailable(w, "Request cancelled")

	// Feedback domain errors
	case errors.Is(err, feedback.ErrInvalidPeriod), errors.Is(err, feedback.ErrInvalidResolution):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, feedback.ErrFeedbackNotFound):
		NotFound(w, "Feedback not found")
	case errors.Is(err, feedback.ErrDuplicateFeedback):
		Conflict(w, "Feedback already registered for this attendance")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
