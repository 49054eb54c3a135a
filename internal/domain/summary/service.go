package summary

import "context"

// SummaryService refreshes and reads the summary cache
type SummaryService interface {
	// Refresh recomputes the current window of the given period type, or of
	// every period type when periodType is nil. It returns after all windows
	// are committed or the first commit fails.
	Refresh(ctx context.Context, periodType *PeriodType) (*RefreshReport, error)

	// Query reads cached rows and ranks them; it never recomputes
	Query(ctx context.Context, req QueryRequest) (*QueryResponse, error)

	// Subscribe streams refresh events until cleanup is called or ctx ends
	Subscribe(ctx context.Context) (<-chan RefreshEvent, func())
}
