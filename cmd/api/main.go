package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/config"
	appHTTP "github.com/deskmetrics/deskmetrics-backend-go/internal/handler/http"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/cron"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/database"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/jwt"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/metrics"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/sse"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/repository/postgresql"
	attendanceService "github.com/deskmetrics/deskmetrics-backend-go/internal/service/attendance"
	feedbackService "github.com/deskmetrics/deskmetrics-backend-go/internal/service/feedback"
	summaryService "github.com/deskmetrics/deskmetrics-backend-go/internal/service/summary"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	recordRepo := postgresql.NewAttendanceRecordRepository(db)
	attendantRepo := postgresql.NewAttendantRepository(db)
	summaryRepo := postgresql.NewSummaryRepository(db)
	feedbackRepo := postgresql.NewFeedbackRepository(db)

	var metricsManager *metrics.Manager
	if cfg.Metrics.Enabled {
		metricsManager = metrics.NewManager(
			metrics.WithNamespace(cfg.Metrics.Namespace),
			metrics.WithRuntimeCollectors(),
		)
	}
	hub := sse.NewHub(cfg.Summary.StreamBuffer)
	loc := cfg.Location()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	attendanceSvc := attendanceService.NewAttendanceService(
		recordRepo,
		attendantRepo,
		attendanceService.WithLocation(loc),
		attendanceService.WithTopN(cfg.App.RankingTopN),
		attendanceService.WithMetrics(metricsManager),
	)
	summarySvc := summaryService.NewSummaryService(
		recordRepo,
		attendantRepo,
		summaryRepo,
		summaryService.WithLocation(loc),
		summaryService.WithTopN(cfg.App.RankingTopN),
		summaryService.WithMetrics(metricsManager),
		summaryService.WithHub(hub),
	)
	feedbackSvc := feedbackService.NewFeedbackService(feedbackRepo, attendantRepo)

	scheduler := cron.NewScheduler()
	summaryJobs := cron.NewSummaryJobs(summarySvc, cfg.Summary.RefreshInterval, cfg.Summary.RefreshTimeout, cfg.Summary.RefreshOnStartup)
	summaryJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	// With the schedule disabled the startup refresh still runs once
	if cfg.Summary.RefreshInterval <= 0 && cfg.Summary.RefreshOnStartup {
		go func() {
			refreshCtx, cancel := context.WithTimeout(ctx, cfg.Summary.RefreshTimeout)
			defer cancel()
			if err := summaryJobs.RefreshSummary(refreshCtx); err != nil {
				slog.Error("Startup summary refresh failed", "error", err)
			}
		}()
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AppName:     cfg.App.Name,
			Version:     cfg.App.Version,
			Env:         cfg.App.Env,
			LogLevel:    cfg.SlogLevel(),
			CORSOrigins: cfg.App.CORSOrigins,
			MetricsPath: metricsPath,
		},
		JWTService,
		metricsManager,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewSummaryHandler(summarySvc),
		appHTTP.NewFeedbackHandler(feedbackSvc),
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server", "timeout", cfg.App.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
