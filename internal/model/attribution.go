package model

import (
	"slices"
	"time"
)

// SecuritySelectionKey is the single key used in SecuritySelectionContribution.
const SecuritySelectionKey = "security_selection"

// PerformanceAttribution decomposes portfolio return into strategy, allocation,
// selection and timing contributions relative to a benchmark.
//
// TotalAttribution always equals SumComponents() exactly.
type PerformanceAttribution struct {
	StrategyContribution          map[string]float64 `json:"strategyContribution"`
	AssetAllocationContribution   map[string]float64 `json:"assetAllocationContribution"`
	SecuritySelectionContribution map[string]float64 `json:"securitySelectionContribution"`
	TimingContribution            float64            `json:"timingContribution"`
	MarketTimingContribution      float64            `json:"marketTimingContribution"`
	CurrencyContribution          float64            `json:"currencyContribution"`
	TotalAttribution              float64            `json:"totalAttribution"`
}

// SumComponents adds every contribution in a fixed order: strategy, asset
// allocation and security selection maps in ascending key order, then timing,
// market timing and currency. Floating point addition is not associative, so
// the order is part of the contract.
func (a PerformanceAttribution) SumComponents() float64 {
	total := 0.0
	for _, m := range []map[string]float64{
		a.StrategyContribution,
		a.AssetAllocationContribution,
		a.SecuritySelectionContribution,
	} {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			total += m[k]
		}
	}
	total += a.TimingContribution
	total += a.MarketTimingContribution
	total += a.CurrencyContribution
	return total
}

// BenchmarkPeriod is one aligned period of a benchmark comparison.
type BenchmarkPeriod struct {
	Date            time.Time `json:"date"`
	BenchmarkReturn float64   `json:"benchmarkReturn"`
	PortfolioReturn float64   `json:"portfolioReturn"`
	ExcessReturn    float64   `json:"excessReturn"`
}

// BenchmarkComparison is the regression of portfolio against benchmark returns.
type BenchmarkComparison struct {
	Periods          []BenchmarkPeriod `json:"periods"`
	Alpha            float64           `json:"alpha"`
	Beta             float64           `json:"beta"`           // Market sensitivity, 1 + ExcessBeta
	ExcessBeta       float64           `json:"excessBeta"`     // Slope of excess return on benchmark return
	RSquared         float64           `json:"rSquared"`       // Fit against the portfolio's own variance
	ExcessRSquared   float64           `json:"excessRSquared"` // Fit of the excess-return regression
	TrackingError    float64           `json:"trackingError"`
	InformationRatio float64           `json:"informationRatio"`
	UpCaptureRatio   float64           `json:"upCaptureRatio"`
	DownCaptureRatio float64           `json:"downCaptureRatio"`
}
