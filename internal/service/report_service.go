package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/apperrors"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/validation"
)

// Report thresholds.
const (
	minSharpeRatio        = 1.0
	maxDrawdownLimit      = 0.20
	maxTopHoldingWeight   = 0.30
	maxExpectedShortfall  = 0.05
	maxDownCaptureRatio   = 1.0
	minWinRateForPositive = 0.5
)

// Recommendation categories.
const (
	CategoryPerformance   = "performance"
	CategoryRisk          = "risk"
	CategoryConcentration = "concentration"
	CategoryBenchmark     = "benchmark"
)

// SnapshotReader is the read side of a ResultsStore.
type SnapshotReader interface {
	Latest(ctx context.Context, agentID string) (model.AgentSnapshot, error)
}

// ReportService turns an agent's latest analytics into readable insights and
// threshold-based recommendations.
type ReportService struct {
	reader SnapshotReader
	now    func() time.Time
}

// NewReportService creates a ReportService reading from the given store.
func NewReportService(reader SnapshotReader) *ReportService {
	return &ReportService{
		reader: reader,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Generate builds a report from the agent's latest snapshot.
// Returns apperrors.ErrAgentNotFound if nothing is stored for the agent.
func (s *ReportService) Generate(ctx context.Context, agentID string) (model.AgentReport, error) {
	if err := validation.ValidateAgentID(agentID); err != nil {
		return model.AgentReport{}, err
	}

	snapshot, err := s.reader.Latest(ctx, agentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAgentNotFound) {
			return model.AgentReport{}, err
		}
		return model.AgentReport{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGenerateReport, err)
	}

	report := model.AgentReport{
		AgentID:         agentID,
		GeneratedAt:     s.now(),
		Insights:        []string{},
		Recommendations: []model.Recommendation{},
		Snapshot:        snapshot,
	}

	if m := snapshot.Metrics; m != nil {
		reportPerformance(&report, m)
	}
	if r := snapshot.Risk; r != nil {
		reportRisk(&report, r)
	}
	if a := snapshot.Attribution; a != nil {
		reportAttribution(&report, a)
	}
	if b := snapshot.Benchmark; b != nil {
		reportBenchmark(&report, b)
	}

	slices.SortStableFunc(report.Recommendations, func(a, b model.Recommendation) int {
		return a.Priority - b.Priority
	})
	return report, nil
}

func reportPerformance(report *model.AgentReport, m *model.PerformanceMetrics) {
	report.Insights = append(report.Insights,
		fmt.Sprintf("Total return %.2f%% over %d trades (%d winning, win rate %.1f%%)",
			m.TotalReturn*100, m.TotalTrades, m.WinningTrades, m.WinRate*100),
		fmt.Sprintf("Sharpe %.2f, Sortino %.2f, max drawdown %.2f%%",
			m.SharpeRatio, m.SortinoRatio, m.MaxDrawdown*100),
	)

	if m.TotalTrades == 0 {
		return
	}
	if m.TotalReturn < 0 {
		report.Recommendations = append(report.Recommendations, model.Recommendation{
			Category: CategoryPerformance,
			Priority: 1,
			Title:    "Negative total return",
			Action:   "Review entry criteria of the strategies contributing the largest losses",
		})
	}
	if m.SharpeRatio < minSharpeRatio {
		report.Recommendations = append(report.Recommendations, model.Recommendation{
			Category: CategoryPerformance,
			Priority: 2,
			Title:    "Low risk-adjusted return",
			Action:   fmt.Sprintf("Sharpe ratio %.2f is below %.1f; reduce position volatility or improve edge", m.SharpeRatio, minSharpeRatio),
		})
	}
	if m.MaxDrawdown > maxDrawdownLimit {
		report.Recommendations = append(report.Recommendations, model.Recommendation{
			Category: CategoryRisk,
			Priority: 1,
			Title:    "Deep drawdown",
			Action:   fmt.Sprintf("Max drawdown %.1f%% exceeds %.0f%%; tighten stop losses or cut position size", m.MaxDrawdown*100, maxDrawdownLimit*100),
		})
	}
	if m.WinRate < minWinRateForPositive && m.ProfitFactor.Float64() < 1 {
		report.Recommendations = append(report.Recommendations, model.Recommendation{
			Category: CategoryPerformance,
			Priority: 2,
			Title:    "Losses outweigh wins",
			Action:   fmt.Sprintf("Win rate %.1f%% with profit factor %.2f; let winners run longer", m.WinRate*100, m.ProfitFactor.Float64()),
		})
	}
}

func reportRisk(report *model.AgentReport, r *model.RiskMetrics) {
	report.Insights = append(report.Insights,
		fmt.Sprintf("VaR %.2f%% and expected shortfall %.2f%% at %.0f%% confidence, beta %.2f (%s)",
			r.ValueAtRisk*100, r.ExpectedShortfall*100, r.Confidence*100, r.Beta, r.BetaSource),
	)
	if r.Concentration.TopHoldingSymbol != "" {
		report.Insights = append(report.Insights,
			fmt.Sprintf("Largest holding %s at %.1f%% of portfolio value",
				r.Concentration.TopHoldingSymbol, r.Concentration.TopHoldingPercentage*100),
		)
	}

	if r.Concentration.TopHoldingPercentage > maxTopHoldingWeight {
		report.Recommendations = append(report.Recommendations, model.Recommendation{
			Category: CategoryConcentration,
			Priority: 2,
			Title:    "Concentrated position",
			Action:   fmt.Sprintf("%s is %.1f%% of the portfolio; diversify below %.0f%%", r.Concentration.TopHoldingSymbol, r.Concentration.TopHoldingPercentage*100, maxTopHoldingWeight*100),
		})
	}
	if r.ExpectedShortfall > maxExpectedShortfall {
		report.Recommendations = append(report.Recommendations, model.Recommendation{
			Category: CategoryRisk,
			Priority: 1,
			Title:    "Heavy tail risk",
			Action:   fmt.Sprintf("Expected shortfall %.2f%% exceeds %.0f%%; hedge or reduce gross exposure", r.ExpectedShortfall*100, maxExpectedShortfall*100),
		})
	}
}

func reportAttribution(report *model.AgentReport, a *model.PerformanceAttribution) {
	top, topValue := "", 0.0
	keys := make([]string, 0, len(a.StrategyContribution))
	for k := range a.StrategyContribution {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if v := a.StrategyContribution[k]; top == "" || v > topValue {
			top, topValue = k, v
		}
	}

	report.Insights = append(report.Insights,
		fmt.Sprintf("Total attribution %.4f, security selection %.4f, timing %.4f",
			a.TotalAttribution, a.SecuritySelectionContribution[model.SecuritySelectionKey], a.TimingContribution),
	)
	if top != "" {
		report.Insights = append(report.Insights,
			fmt.Sprintf("Strategy %s contributes most (%.4f)", top, topValue))
	}
}

func reportBenchmark(report *model.AgentReport, b *model.BenchmarkComparison) {
	report.Insights = append(report.Insights,
		fmt.Sprintf("Alpha %.4f, beta %.2f, R² %.2f, tracking error %.4f over %d periods",
			b.Alpha, b.Beta, b.RSquared, b.TrackingError, len(b.Periods)),
	)

	if len(b.Periods) < 2 {
		return
	}
	if b.Alpha < 0 {
		report.Recommendations = append(report.Recommendations, model.Recommendation{
			Category: CategoryBenchmark,
			Priority: 2,
			Title:    "Underperforming benchmark",
			Action:   fmt.Sprintf("Alpha %.4f is negative; consider tracking the benchmark passively", b.Alpha),
		})
	}
	if b.DownCaptureRatio > maxDownCaptureRatio {
		report.Recommendations = append(report.Recommendations, model.Recommendation{
			Category: CategoryBenchmark,
			Priority: 3,
			Title:    "Amplified downside",
			Action:   fmt.Sprintf("Down-capture ratio %.2f means losses exceed the benchmark's in down periods", b.DownCaptureRatio),
		})
	}
}
