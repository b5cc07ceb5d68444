package analytics

import (
	"fmt"
	"math"
	"slices"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/validation"
)

// DefaultConfidence is the VaR confidence level used when none (or an invalid one) is given.
const DefaultConfidence = 0.95

// quantileEpsilon absorbs binary rounding in (1 - confidence) * n, e.g.
// (1 - 0.9) * 10 = 0.9999999999999998, so the tail index is not off by one.
const quantileEpsilon = 1e-9

const unknownLabel = "Unknown"

// RiskAssessor computes portfolio risk metrics by historical simulation.
type RiskAssessor struct {
	scenarios StressScenarioProvider
}

// RiskOption configures a RiskAssessor.
type RiskOption func(*RiskAssessor)

// WithStressScenarios replaces the default stress scenario table.
func WithStressScenarios(provider StressScenarioProvider) RiskOption {
	return func(a *RiskAssessor) {
		if provider != nil {
			a.scenarios = provider
		}
	}
}

// NewRiskAssessor creates a RiskAssessor using the default scenario table
// unless overridden with WithStressScenarios.
func NewRiskAssessor(opts ...RiskOption) *RiskAssessor {
	a := &RiskAssessor{scenarios: DefaultStressScenarios()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assess computes VaR, expected shortfall, beta, correlations, stress tests and
// concentration for a portfolio. Beta is measured against the first holding's
// own return series, which stands in for the market.
//
// Prefer AssessAgainstBenchmark when a market return series is available.
func (a *RiskAssessor) Assess(p model.Portfolio, history model.PriceHistory, confidence float64) (model.RiskMetrics, error) {
	return a.assess(p, history, confidence, nil, false)
}

// AssessAgainstBenchmark is Assess with beta measured against a caller-supplied
// benchmark return series instead of an in-portfolio proxy.
func (a *RiskAssessor) AssessAgainstBenchmark(p model.Portfolio, history model.PriceHistory, benchmark []float64, confidence float64) (model.RiskMetrics, error) {
	return a.assess(p, history, confidence, benchmark, true)
}

func (a *RiskAssessor) assess(p model.Portfolio, history model.PriceHistory, confidence float64, benchmark []float64, useBenchmark bool) (model.RiskMetrics, error) {
	if err := validation.ValidatePortfolio(p); err != nil {
		return model.RiskMetrics{}, fmt.Errorf("invalid portfolio: %w", err)
	}
	if !(confidence > 0 && confidence < 1) {
		confidence = DefaultConfidence
	}

	portfolioReturns := PortfolioReturns(p, history)
	varValue, cvar := HistoricalVaR(portfolioReturns, confidence)

	metrics := model.RiskMetrics{
		Confidence:        confidence,
		Observations:      len(portfolioReturns),
		ValueAtRisk:       varValue,
		ExpectedShortfall: cvar,
		Beta:              1.0,
		CorrelationMatrix: CorrelationMatrix(p.Symbols(), history),
		StressTests:       StressTest(p, a.scenarios),
		Concentration:     Concentration(p),
	}

	switch {
	case useBenchmark:
		metrics.BetaSource = "benchmark"
		metrics.Beta = Beta(portfolioReturns, benchmark)
	case len(p.Holdings) > 0:
		proxy := p.Holdings[0].Symbol
		metrics.BetaSource = "proxy:" + proxy
		metrics.Beta = Beta(portfolioReturns, ReturnsFromPrices(history[proxy]))
	}

	return metrics, nil
}

// PortfolioReturns builds the portfolio's historical return series by
// revaluing the current holdings at every past price index. An index is skipped
// when any held symbol lacks a price at it or at the previous index, or when the
// previous portfolio value is zero.
func PortfolioReturns(p model.Portfolio, history model.PriceHistory) []float64 {
	if len(p.Holdings) == 0 {
		return []float64{}
	}

	longest := 0
	for _, h := range p.Holdings {
		longest = max(longest, len(history[h.Symbol]))
	}

	returns := make([]float64, 0, max(longest-1, 0))
	for t := 1; t < longest; t++ {
		prevValue, value := 0.0, 0.0
		complete := true
		for _, h := range p.Holdings {
			prices := history[h.Symbol]
			if t >= len(prices) {
				complete = false
				break
			}
			prevValue += h.Quantity * prices[t-1]
			value += h.Quantity * prices[t]
		}
		if !complete || prevValue == 0 {
			continue
		}
		returns = append(returns, (value-prevValue)/prevValue)
	}
	return returns
}

// HistoricalVaR returns the Value-at-Risk and Expected Shortfall of a return
// series at the given confidence, both as non-negative magnitudes.
//
// The series is sorted ascending and index = floor((1 - confidence) * n).
// VaR is |sorted[index]| and ES is |mean(sorted[0..index])|. When the boundary
// return is a gain the tail mean can sit closer to zero than the boundary, so
// ES is floored at VaR. An empty series yields 0, 0.
func HistoricalVaR(returns []float64, confidence float64) (float64, float64) {
	n := len(returns)
	if n == 0 {
		return 0, 0
	}

	sorted := slices.Clone(returns)
	slices.Sort(sorted)

	index := int(math.Floor((1-confidence)*float64(n) + quantileEpsilon))
	index = int(clamp(float64(index), 0, float64(n-1)))

	varValue := math.Abs(sorted[index])
	cvar := math.Abs(mean(sorted[:index+1]))
	if cvar < varValue {
		cvar = varValue
	}
	return varValue, cvar
}

// Beta is the population covariance of the portfolio and market series divided
// by the market variance, after truncating both to the shorter length.
// Returns 1.0 with fewer than two aligned points or zero market variance.
func Beta(portfolio, market []float64) float64 {
	portfolio, market = align(portfolio, market)
	if len(portfolio) < 2 {
		return 1.0
	}
	v := variance(market)
	if v == 0 {
		return 1.0
	}
	return covariance(portfolio, market) / v
}

// CorrelationMatrix returns pairwise Pearson correlations of the symbols'
// return series. The diagonal is always 1 and pairs without enough data are 0.
func CorrelationMatrix(symbols []string, history model.PriceHistory) map[string]map[string]float64 {
	returns := make([][]float64, len(symbols))
	for i, s := range symbols {
		returns[i] = ReturnsFromPrices(history[s])
	}

	matrix := make(map[string]map[string]float64, len(symbols))
	for _, s := range symbols {
		matrix[s] = make(map[string]float64, len(symbols))
	}
	for i, si := range symbols {
		matrix[si][si] = 1.0
		for j := i + 1; j < len(symbols); j++ {
			sj := symbols[j]
			c := pearson(returns[i], returns[j])
			matrix[si][sj] = c
			matrix[sj][si] = c
		}
	}
	return matrix
}

// Concentration measures how portfolio value is spread across holdings,
// sectors and geographies. Blank sector or geography labels are grouped under
// "Unknown". A portfolio with zero total value reports empty maps.
func Concentration(p model.Portfolio) model.ConcentrationRisk {
	risk := model.ConcentrationRisk{
		SectorConcentration:    make(map[string]float64),
		GeographyConcentration: make(map[string]float64),
	}

	total := p.TotalValue()
	if total <= 0 {
		return risk
	}

	sectorValues := make(map[string]float64)
	geographyValues := make(map[string]float64)
	for _, h := range p.Holdings {
		value := h.Value()
		weight := value / total
		if weight > risk.TopHoldingPercentage || risk.TopHoldingSymbol == "" {
			risk.TopHoldingPercentage = weight
			risk.TopHoldingSymbol = h.Symbol
		}
		risk.HerfindahlIndex += weight * weight

		sectorValues[labelOrUnknown(h.Sector)] += value
		geographyValues[labelOrUnknown(h.Geography)] += value
	}

	for sector, value := range sectorValues {
		risk.SectorConcentration[sector] = value / total
	}
	for geography, value := range geographyValues {
		risk.GeographyConcentration[geography] = value / total
	}
	return risk
}

func labelOrUnknown(label string) string {
	if label == "" {
		return unknownLabel
	}
	return label
}
