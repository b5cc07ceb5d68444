package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/analytics"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/api"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/config"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/database"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/logging"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/metrics"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/repository"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/service"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.WithError(err).Fatal("Failed to migrate database")
	}

	logger.WithFields(logrus.Fields{
		"path":  cfg.Database.Path,
		"store": cfg.Analytics.Store,
	}).Info("Connected to database")

	assessor, err := newRiskAssessor(cfg.Analytics)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load stress scenarios")
	}

	// Create services
	recorder := metrics.NewRecorder()
	store := newResultsStore(cfg.Analytics.Store, db)

	analyticsService := service.NewAnalyticsService(store,
		service.WithLogger(logger),
		service.WithRecorder(recorder),
		service.WithRiskAssessor(assessor),
		service.WithDefaultConfidence(cfg.Analytics.Confidence),
		service.WithOmegaThreshold(cfg.Analytics.OmegaThreshold),
		service.WithMaxConcurrency(cfg.Analytics.MaxConcurrency),
	)
	reportService := service.NewReportService(store)
	systemService := service.NewSystemService(db, cfg.Analytics.Store, map[string]bool{
		"snapshot_history":   cfg.Analytics.Store == config.StoreSQLite,
		"custom_stress":      cfg.Analytics.StressScenarios != "",
		"conditioned_stress": cfg.Analytics.StressByHolding,
		"api_key_auth":       cfg.Auth.InternalAPIKey != "",
		"digest":             cfg.Analytics.DigestSchedule != "",
	})

	digest := service.NewDigestScheduler(analyticsService, reportService, cfg.Analytics.DigestSchedule, logger, recorder)
	if err := digest.Start(); err != nil {
		logger.WithError(err).Fatal("Failed to start digest scheduler")
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:    systemService,
		Analytics: analyticsService,
		Reports:   reportService,
		Recorder:  recorder,
	}, logger, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":    cfg.Server.Addr,
			"version": version.Version,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	digest.Stop(ctx)
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func newResultsStore(kind string, db *sql.DB) service.ResultsStore {
	if kind == config.StoreSQLite {
		return repository.NewSQLiteResultsStore(db)
	}
	return repository.NewMemoryResultsStore()
}

func newRiskAssessor(cfg config.AnalyticsConfig) (*analytics.RiskAssessor, error) {
	var provider analytics.StressScenarioProvider = analytics.DefaultStressScenarios()
	if cfg.StressScenarios != "" {
		scenarios, err := analytics.LoadScenarioFile(cfg.StressScenarios)
		if err != nil {
			return nil, err
		}
		provider = scenarios
	}
	if cfg.StressByHolding {
		provider = analytics.PortfolioConditionedScenarios{Base: provider}
	}
	return analytics.NewRiskAssessor(analytics.WithStressScenarios(provider)), nil
}
