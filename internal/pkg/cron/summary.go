package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/domain/summary"
)

// JobRefreshSummary is the name of the scheduled summary cache refresh
const JobRefreshSummary = "refresh_attendance_summary"

type SummaryJobs struct {
	summaryService summary.SummaryService
	interval       time.Duration
	timeout        time.Duration
	runOnStart     bool
}

func NewSummaryJobs(summaryService summary.SummaryService, interval, timeout time.Duration, runOnStart bool) *SummaryJobs {
	return &SummaryJobs{
		summaryService: summaryService,
		interval:       interval,
		timeout:        timeout,
		runOnStart:     runOnStart,
	}
}

func (j *SummaryJobs) RegisterJobs(scheduler *Scheduler) {
	opts := []JobOption{WithTimeout(j.timeout)}
	if !j.runOnStart {
		opts = append(opts, WithSkipInitial())
	}
	scheduler.AddJob(JobRefreshSummary, j.interval, j.RefreshSummary, opts...)
}

// RefreshSummary recomputes the current window of every period type
func (j *SummaryJobs) RefreshSummary(ctx context.Context) error {
	report, err := j.summaryService.Refresh(ctx, nil)
	if err != nil {
		return fmt.Errorf("refresh summary cache: %w", err)
	}

	slog.Info("Cron: summary cache refreshed",
		"run_id", report.RunID,
		"windows", len(report.Windows),
		"duration", report.CompletedAt.Sub(report.StartedAt))
	return nil
}
