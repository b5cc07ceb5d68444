package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/analytics"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/apperrors"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/logging"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/metrics"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/validation"
)

// Component names used in logs and metrics.
const (
	ComponentPerformance = "performance"
	ComponentRisk        = "risk"
	ComponentAttribution = "attribution"
	ComponentBenchmark   = "benchmark"
)

// AnalyticsService coordinates the four analytics components for trading
// agents and records each result in the ResultsStore.
//
// The calculations themselves are pure; this service adds agent validation,
// storage, structured logging and Prometheus instrumentation around them.
type AnalyticsService struct {
	store             ResultsStore
	assessor          *analytics.RiskAssessor
	omegaThreshold    float64
	defaultConfidence float64
	maxConcurrency    int
	logger            logrus.FieldLogger
	recorder          *metrics.Recorder
}

// AnalyticsOption configures an AnalyticsService.
type AnalyticsOption func(*AnalyticsService)

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(logger logrus.FieldLogger) AnalyticsOption {
	return func(s *AnalyticsService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder enables Prometheus instrumentation.
func WithRecorder(recorder *metrics.Recorder) AnalyticsOption {
	return func(s *AnalyticsService) {
		s.recorder = recorder
	}
}

// WithRiskAssessor replaces the default risk assessor, e.g. to plug in custom stress scenarios.
func WithRiskAssessor(assessor *analytics.RiskAssessor) AnalyticsOption {
	return func(s *AnalyticsService) {
		if assessor != nil {
			s.assessor = assessor
		}
	}
}

// WithOmegaThreshold sets the Omega ratio threshold used for performance metrics.
func WithOmegaThreshold(threshold float64) AnalyticsOption {
	return func(s *AnalyticsService) {
		s.omegaThreshold = threshold
	}
}

// WithDefaultConfidence sets the VaR confidence used when a caller passes 0.
func WithDefaultConfidence(confidence float64) AnalyticsOption {
	return func(s *AnalyticsService) {
		if confidence > 0 && confidence < 1 {
			s.defaultConfidence = confidence
		}
	}
}

// WithMaxConcurrency bounds how many agents a batch run analyzes at once.
func WithMaxConcurrency(n int) AnalyticsOption {
	return func(s *AnalyticsService) {
		if n > 0 {
			s.maxConcurrency = n
		}
	}
}

// NewAnalyticsService creates an AnalyticsService over the given store.
func NewAnalyticsService(store ResultsStore, opts ...AnalyticsOption) *AnalyticsService {
	s := &AnalyticsService{
		store:             store,
		assessor:          analytics.NewRiskAssessor(),
		omegaThreshold:    analytics.DefaultOmegaThreshold,
		defaultConfidence: analytics.DefaultConfidence,
		maxConcurrency:    8,
		logger:            logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FullAnalysisInput carries everything needed to run all four components for one agent.
//
// Risk runs only when Portfolio has holdings; attribution when either weight
// map is given (both are then required); benchmark comparison only when
// BenchmarkSeries is non-empty. When BenchmarkSeries is present it also serves as the market
// series for the risk beta instead of the first-holding proxy.
type FullAnalysisInput struct {
	Trades          []model.Trade
	Period          model.ReportingPeriod
	Portfolio       model.Portfolio
	History         model.PriceHistory
	Confidence      float64
	PortfolioSeries []model.ReturnPoint
	BenchmarkSeries []model.ReturnPoint
	StrategyWeights map[string]float64
	AssetWeights    map[string]float64
}

// BatchResult collects the per-agent outcome of AnalyzeBatch.
// Every submitted agent appears in exactly one of the two maps.
type BatchResult struct {
	Snapshots map[string]model.AgentSnapshot `json:"snapshots"`
	Errors    map[string]string              `json:"errors"`
}

// AnalyzePerformance computes and stores performance metrics for an agent's closed trades.
func (s *AnalyticsService) AnalyzePerformance(ctx context.Context, agentID string, trades []model.Trade, period model.ReportingPeriod) (model.PerformanceMetrics, error) {
	if err := validation.ValidateAgentID(agentID); err != nil {
		return model.PerformanceMetrics{}, err
	}

	var m model.PerformanceMetrics
	err := s.observe(agentID, ComponentPerformance, func() error {
		m = analytics.CalculatePerformanceWithThreshold(trades, period, s.omegaThreshold)
		return nil
	})
	if err != nil {
		return model.PerformanceMetrics{}, err
	}

	if err := s.store.PutMetrics(ctx, agentID, m); err != nil {
		return model.PerformanceMetrics{}, fmt.Errorf("failed to store performance metrics: %w", err)
	}
	return m, nil
}

// AssessRisk computes and stores risk metrics for an agent's portfolio.
// A confidence of 0 selects the service default. When benchmark is non-empty
// beta is measured against it; otherwise the first holding is the market proxy.
func (s *AnalyticsService) AssessRisk(ctx context.Context, agentID string, portfolio model.Portfolio, history model.PriceHistory, confidence float64, benchmark []float64) (model.RiskMetrics, error) {
	if err := validation.ValidateAgentID(agentID); err != nil {
		return model.RiskMetrics{}, err
	}

	r, err := s.assessRisk(agentID, portfolio, history, confidence, benchmark)
	if err != nil {
		return model.RiskMetrics{}, err
	}

	if err := s.store.PutRisk(ctx, agentID, r); err != nil {
		return model.RiskMetrics{}, fmt.Errorf("failed to store risk metrics: %w", err)
	}
	return r, nil
}

// AnalyzeAttribution decomposes and stores an agent's return relative to its benchmark.
func (s *AnalyticsService) AnalyzeAttribution(ctx context.Context, agentID string, portfolio, benchmark []model.ReturnPoint, strategyWeights, assetWeights map[string]float64) (model.PerformanceAttribution, error) {
	if err := validation.ValidateAgentID(agentID); err != nil {
		return model.PerformanceAttribution{}, err
	}

	var a model.PerformanceAttribution
	err := s.observe(agentID, ComponentAttribution, func() error {
		var err error
		a, err = analytics.Attribute(portfolio, benchmark, strategyWeights, assetWeights)
		return err
	})
	if err != nil {
		return model.PerformanceAttribution{}, err
	}

	if err := s.store.PutAttribution(ctx, agentID, a); err != nil {
		return model.PerformanceAttribution{}, fmt.Errorf("failed to store attribution: %w", err)
	}
	return a, nil
}

// CompareBenchmark regresses and stores an agent's returns against a benchmark.
func (s *AnalyticsService) CompareBenchmark(ctx context.Context, agentID string, portfolio, benchmark []model.ReturnPoint) (model.BenchmarkComparison, error) {
	if err := validation.ValidateAgentID(agentID); err != nil {
		return model.BenchmarkComparison{}, err
	}

	var b model.BenchmarkComparison
	err := s.observe(agentID, ComponentBenchmark, func() error {
		b = analytics.CompareBenchmark(portfolio, benchmark)
		return nil
	})
	if err != nil {
		return model.BenchmarkComparison{}, err
	}

	if err := s.store.PutBenchmark(ctx, agentID, b); err != nil {
		return model.BenchmarkComparison{}, fmt.Errorf("failed to store benchmark comparison: %w", err)
	}
	return b, nil
}

// AnalyzeAll runs every applicable component for one agent concurrently.
// Nothing is stored unless all components succeed, and the results are then
// published with a single PutSnapshot, so neither a failure nor a concurrent
// reader ever sees the agent with a mix of old and new results.
func (s *AnalyticsService) AnalyzeAll(ctx context.Context, agentID string, in FullAnalysisInput) (model.AgentSnapshot, error) {
	if err := validation.ValidateAgentID(agentID); err != nil {
		return model.AgentSnapshot{}, err
	}

	var (
		perf        model.PerformanceMetrics
		risk        *model.RiskMetrics
		attribution *model.PerformanceAttribution
		benchmark   *model.BenchmarkComparison
	)

	var g errgroup.Group

	g.Go(func() error {
		return s.observe(agentID, ComponentPerformance, func() error {
			perf = analytics.CalculatePerformanceWithThreshold(in.Trades, in.Period, s.omegaThreshold)
			return nil
		})
	})

	if len(in.Portfolio.Holdings) > 0 {
		g.Go(func() error {
			var market []float64
			if len(in.BenchmarkSeries) > 0 {
				market = model.Returns(in.BenchmarkSeries)
			}
			r, err := s.assessRisk(agentID, in.Portfolio, in.History, in.Confidence, market)
			if err != nil {
				return err
			}
			risk = &r
			return nil
		})
	}

	if in.StrategyWeights != nil || in.AssetWeights != nil {
		g.Go(func() error {
			return s.observe(agentID, ComponentAttribution, func() error {
				a, err := analytics.Attribute(in.PortfolioSeries, in.BenchmarkSeries, in.StrategyWeights, in.AssetWeights)
				if err != nil {
					return err
				}
				attribution = &a
				return nil
			})
		})
	}

	if len(in.BenchmarkSeries) > 0 {
		g.Go(func() error {
			return s.observe(agentID, ComponentBenchmark, func() error {
				b := analytics.CompareBenchmark(in.PortfolioSeries, in.BenchmarkSeries)
				benchmark = &b
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil {
		return model.AgentSnapshot{}, err
	}

	snapshot := model.AgentSnapshot{
		AgentID:     agentID,
		Metrics:     &perf,
		Risk:        risk,
		Attribution: attribution,
		Benchmark:   benchmark,
	}
	if err := s.store.PutSnapshot(ctx, agentID, snapshot); err != nil {
		return model.AgentSnapshot{}, fmt.Errorf("failed to store snapshot: %w", err)
	}

	return s.store.Latest(ctx, agentID)
}

// AnalyzeBatch runs AnalyzeAll for many agents with bounded concurrency.
// A failure for one agent is recorded in the result and never stops the
// others. The returned error is non-nil only when ctx is cancelled.
func (s *AnalyticsService) AnalyzeBatch(ctx context.Context, inputs map[string]FullAnalysisInput) (BatchResult, error) {
	result := BatchResult{
		Snapshots: make(map[string]model.AgentSnapshot, len(inputs)),
		Errors:    make(map[string]string),
	}
	s.recorder.ObserveBatch(len(inputs))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)

	for agentID, in := range inputs {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			snapshot, err := s.AnalyzeAll(gctx, agentID, in)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors[agentID] = err.Error()
				return nil
			}
			result.Snapshots[agentID] = snapshot
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	s.logger.WithFields(logrus.Fields{
		"agents":    len(inputs),
		"succeeded": len(result.Snapshots),
		"failed":    len(result.Errors),
	}).Info("batch analysis finished")

	return result, nil
}

// Latest returns the agent's most recent results.
func (s *AnalyticsService) Latest(ctx context.Context, agentID string) (model.AgentSnapshot, error) {
	if err := validation.ValidateAgentID(agentID); err != nil {
		return model.AgentSnapshot{}, err
	}
	return s.store.Latest(ctx, agentID)
}

// History returns the agent's performance metrics history, oldest first.
func (s *AnalyticsService) History(ctx context.Context, agentID string) ([]model.PerformanceMetrics, error) {
	if err := validation.ValidateAgentID(agentID); err != nil {
		return nil, err
	}
	return s.store.MetricsHistory(ctx, agentID)
}

// Agents returns the IDs of all agents with stored results.
func (s *AnalyticsService) Agents(ctx context.Context) ([]string, error) {
	return s.store.Agents(ctx)
}

// Snapshot returns one stored result row by ID.
// Stores that keep only the latest state report apperrors.ErrSnapshotNotFound.
func (s *AnalyticsService) Snapshot(ctx context.Context, id string) (model.StoredSnapshot, error) {
	if err := validation.ValidateUUID(id); err != nil {
		return model.StoredSnapshot{}, err
	}
	finder, ok := s.store.(SnapshotFinder)
	if !ok {
		return model.StoredSnapshot{}, apperrors.ErrSnapshotNotFound
	}
	return finder.Snapshot(ctx, id)
}

func (s *AnalyticsService) assessRisk(agentID string, portfolio model.Portfolio, history model.PriceHistory, confidence float64, benchmark []float64) (model.RiskMetrics, error) {
	if confidence == 0 {
		confidence = s.defaultConfidence
	}

	var r model.RiskMetrics
	err := s.observe(agentID, ComponentRisk, func() error {
		var err error
		if len(benchmark) > 0 {
			r, err = s.assessor.AssessAgainstBenchmark(portfolio, history, benchmark, confidence)
		} else {
			r, err = s.assessor.Assess(portfolio, history, confidence)
		}
		return err
	})
	return r, err
}

// observe times fn, logs the outcome and records it in the metrics recorder.
func (s *AnalyticsService) observe(agentID, component string, fn func() error) error {
	start := time.Now()
	err := fn()
	took := time.Since(start)

	s.recorder.ObserveCalculation(component, took, err)

	entry := s.logger.WithFields(logrus.Fields{
		"agent":     agentID,
		"component": component,
		"took_ms":   took.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Warn("analytics calculation rejected")
		return err
	}
	entry.Debug("analytics calculation finished")
	return nil
}
