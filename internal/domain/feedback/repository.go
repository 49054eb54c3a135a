package feedback

import "context"

type FeedbackRepository interface {
	// FetchFeedbacks returns feedback matching filter, oldest first
	FetchFeedbacks(ctx context.Context, filter Filter) ([]Feedback, error)

	// ListFeedbacks returns one page of feedback, newest first, and the total match count
	ListFeedbacks(ctx context.Context, filter ListFilter) ([]Feedback, int64, error)

	// GetFeedbackByID returns ErrFeedbackNotFound when no row has id
	GetFeedbackByID(ctx context.Context, id string) (Feedback, error)

	// CreateFeedback inserts f and fills its ID and CreatedAt. It returns
	// ErrDuplicateFeedback when the attendance already has feedback.
	CreateFeedback(ctx context.Context, f *Feedback) error

	// FetchActiveModules returns active modules ordered by name
	FetchActiveModules(ctx context.Context) ([]Module, error)
}
