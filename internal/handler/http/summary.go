package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/summary"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/handler/http/response"
)

type SummaryHandler interface {
	// Query reads cached summary rows with their ranking
	Query(w http.ResponseWriter, r *http.Request)
	// Refresh recomputes the current windows synchronously
	Refresh(w http.ResponseWriter, r *http.Request)
	// Stream pushes refresh events over SSE
	Stream(w http.ResponseWriter, r *http.Request)
}

type summaryHandlerImpl struct {
	summaryService summary.SummaryService
	pingInterval   time.Duration
}

func NewSummaryHandler(summaryService summary.SummaryService) SummaryHandler {
	return &summaryHandlerImpl{
		summaryService: summaryService,
		pingInterval:   30 * time.Second,
	}
}

// Query handles GET /summary
func (h *summaryHandlerImpl) Query(w http.ResponseWriter, r *http.Request) {
	top, err := intParam(r, "top")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	q := r.URL.Query()
	result, err := h.summaryService.Query(r.Context(), summary.QueryRequest{
		PeriodType: q.Get("period_type"),
		Start:      q.Get("start"),
		End:        q.Get("end"),
		Attendant:  q.Get("attendant"),
		Top:        top,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Refresh handles POST /summary/refresh
func (h *summaryHandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	req := summary.RefreshRequest{PeriodType: r.URL.Query().Get("period_type")}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	report, err := h.summaryService.Refresh(r.Context(), req.Target())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Summary cache refreshed", summary.NewRefreshResponse(report))
}

// Stream handles GET /summary/stream
func (h *summaryHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.summaryService.Subscribe(r.Context())
	defer cleanup()

	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(h.pingInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Warn("Failed to encode summary event", "id", event.ID, "error", err)
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
