package http

import (
	"log/slog"
	"os"

	"github.com/deskmetrics/deskmetrics-backend-go/internal/handler/http/middleware"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/jwt"
	"github.com/deskmetrics/deskmetrics-backend-go/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AppName     string
	Version     string
	Env         string
	LogLevel    slog.Level
	CORSOrigins []string
	MetricsPath string
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	metricsManager *metrics.Manager,
	attendanceHandler AttendanceHandler,
	summaryHandler SummaryHandler,
	feedbackHandler FeedbackHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Last-Event-ID"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if metricsManager != nil {
		r.Use(middleware.Metrics(metricsManager))
		if cfg.MetricsPath != "" {
			r.Handle(cfg.MetricsPath, metricsManager.Handler())
		}
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public customer survey form
		r.Post("/feedback", feedbackHandler.SubmitFeedback)

		// EventSource cannot set headers, so the stream also accepts ?jwt=
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Get("/summary/stream", summaryHandler.Stream)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/dashboard", attendanceHandler.GetDashboard)
				r.Get("/metrics", attendanceHandler.GetMetrics)
				r.Get("/trend", attendanceHandler.GetTrend)
				r.Get("/ranking", attendanceHandler.GetRanking)
				r.Get("/recent", attendanceHandler.GetRecent)
				r.Get("/records", attendanceHandler.ListRecords)
			})

			r.Route("/summary", func(r chi.Router) {
				r.Get("/", summaryHandler.Query)
				r.With(middleware.AdminOnly).Post("/refresh", summaryHandler.Refresh)
			})

			r.Get("/feedback", feedbackHandler.ListFeedbacks)
			r.Get("/feedback/performance", feedbackHandler.GetPerformance)
			r.Get("/feedback/{id}", feedbackHandler.GetFeedback)
		})
	})

	return r
}
