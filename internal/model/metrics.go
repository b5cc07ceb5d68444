package model

// PerformanceMetrics summarizes the returns and risk-adjusted ratios of a trade list.
// It carries no timestamp so that identical inputs produce identical values.
type PerformanceMetrics struct {
	Period           ReportingPeriod `json:"period"`
	TotalReturn      float64         `json:"totalReturn"`      // Simple sum of per-trade returns
	AnnualizedReturn Ratio           `json:"annualizedReturn"` // (1 + total)^periodsPerYear - 1
	Volatility       float64         `json:"volatility"`       // Population std dev of per-trade returns
	SharpeRatio      float64         `json:"sharpeRatio"`
	SortinoRatio     float64         `json:"sortinoRatio"`
	CalmarRatio      Ratio           `json:"calmarRatio"`
	OmegaRatio       float64         `json:"omegaRatio"`
	InformationRatio float64         `json:"informationRatio"`
	MaxDrawdown      float64         `json:"maxDrawdown"`
	WinRate          float64         `json:"winRate"`
	ProfitFactor     Ratio           `json:"profitFactor"`
	AverageWin       float64         `json:"averageWin"`
	AverageLoss      float64         `json:"averageLoss"` // Mean of losing returns (<= 0)
	LargestWin       float64         `json:"largestWin"`
	LargestLoss      float64         `json:"largestLoss"` // Most negative losing return
	TotalTrades      int             `json:"totalTrades"`
	WinningTrades    int             `json:"winningTrades"`
	LosingTrades     int             `json:"losingTrades"`
}

// StressScenario describes a hypothetical market shock.
type StressScenario struct {
	Name        string  `json:"name" yaml:"name"`
	Loss        float64 `json:"loss" yaml:"loss"`               // Fractional loss, e.g. 0.30
	Probability float64 `json:"probability" yaml:"probability"` // Probability in [0,1]
}

// StressTestResult is the outcome of applying a StressScenario to a portfolio.
type StressTestResult struct {
	Scenario      string  `json:"scenario"`
	Loss          float64 `json:"loss"`
	Probability   float64 `json:"probability"`
	ImpactScore   float64 `json:"impactScore"`   // loss * probability
	EstimatedLoss float64 `json:"estimatedLoss"` // loss * total portfolio value
}

// ConcentrationRisk describes how portfolio value is distributed.
type ConcentrationRisk struct {
	TopHoldingSymbol       string             `json:"topHoldingSymbol"`
	TopHoldingPercentage   float64            `json:"topHoldingPercentage"`
	HerfindahlIndex        float64            `json:"herfindahlIndex"` // Sum of squared holding weights
	SectorConcentration    map[string]float64 `json:"sectorConcentration"`
	GeographyConcentration map[string]float64 `json:"geographyConcentration"`
}

// RiskMetrics is the result of a portfolio risk assessment.
type RiskMetrics struct {
	Confidence        float64                       `json:"confidence"`
	Observations      int                           `json:"observations"` // Length of the portfolio return series
	ValueAtRisk       float64                       `json:"valueAtRisk"`
	ExpectedShortfall float64                       `json:"expectedShortfall"`
	Beta              float64                       `json:"beta"`
	BetaSource        string                        `json:"betaSource"` // "benchmark" or "proxy:<symbol>"
	CorrelationMatrix map[string]map[string]float64 `json:"correlationMatrix"`
	StressTests       []StressTestResult            `json:"stressTests"`
	Concentration     ConcentrationRisk             `json:"concentration"`
}
