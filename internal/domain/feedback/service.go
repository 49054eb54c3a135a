package feedback

import "context"

type FeedbackService interface {
	GetPerformance(ctx context.Context, req PerformanceRequest) (*PerformanceResponse, error)

	// ListFeedbacks returns one filtered page of feedback, newest first
	ListFeedbacks(ctx context.Context, req ListFeedbackRequest) (*ListFeedbackResponse, error)

	GetFeedback(ctx context.Context, id string) (*FeedbackResponse, error)

	// SubmitFeedback records a customer survey answer, one per attendance
	SubmitFeedback(ctx context.Context, req SubmitFeedbackRequest) (*FeedbackResponse, error)
}
