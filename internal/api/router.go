package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Trading-Analytics-Engine/internal/api/middleware"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/config"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/metrics"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/service"
)

// Services bundles what the router hands to its handlers.
type Services struct {
	System    *service.SystemService
	Analytics *service.AnalyticsService
	Reports   *service.ReportService
	Recorder  *metrics.Recorder
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, logger logrus.FieldLogger, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// Writes share one rate limit and need the internal key only when one is configured.
	writeLimit := custommiddleware.RateLimit(cfg.Server.WriteRPS, cfg.Server.WriteBurst)
	writeGuard := writeLimit
	if cfg.Auth.InternalAPIKey != "" {
		auth := custommiddleware.NewAPIKeyMiddleware(cfg.Auth.InternalAPIKey)
		writeGuard = func(next http.Handler) http.Handler { return auth(writeLimit(next)) }
	}

	if svc.Recorder != nil {
		r.Method(http.MethodGet, "/metrics", svc.Recorder.Handler())
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/analytics", func(r chi.Router) {
			analyticsHandler := handlers.NewAnalyticsHandler(svc.Analytics, svc.Reports)

			// Static paths are registered before {agentId} so they never match it.
			r.Get("/agents", analyticsHandler.Agents)
			r.With(writeGuard).Post("/batch", analyticsHandler.Batch)
			r.With(custommiddleware.ValidateUUIDMiddleware).Get("/snapshots/{uuid}", analyticsHandler.Snapshot)

			r.Route("/{agentId}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateAgentIDMiddleware)

				r.Get("/", analyticsHandler.Latest)
				r.Get("/history", analyticsHandler.History)
				r.Get("/report", analyticsHandler.Report)

				r.Group(func(r chi.Router) {
					r.Use(writeGuard)
					r.Post("/performance", analyticsHandler.Performance)
					r.Post("/risk", analyticsHandler.Risk)
					r.Post("/attribution", analyticsHandler.Attribution)
					r.Post("/benchmark", analyticsHandler.Benchmark)
					r.Post("/analyze", analyticsHandler.Analyze)
				})
			})
		})
	})

	return r
}
