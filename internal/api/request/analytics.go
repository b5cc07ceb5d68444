// Package request holds the JSON request bodies of the analytics API and their
// conversion to model types.
//
// Prices and quantities are decimals so callers can send them as strings
// ("101.25") without float rounding in transit; they become float64 at the
// model boundary. Returns and weights are plain numbers.
package request

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
)

// TradeRequest is one closed trade.
type TradeRequest struct {
	Symbol     string          `json:"symbol" validate:"required"`
	Strategy   string          `json:"strategy"`
	EntryTime  time.Time       `json:"entryTime"`
	ExitTime   time.Time       `json:"exitTime"`
	EntryPrice decimal.Decimal `json:"entryPrice"`
	ExitPrice  decimal.Decimal `json:"exitPrice"`
	Quantity   decimal.Decimal `json:"quantity"`
	Outcome    string          `json:"outcome" validate:"omitempty,oneof=win loss breakeven"`
}

// PerformanceRequest is the body of POST /api/analytics/{agentId}/performance.
type PerformanceRequest struct {
	Period string         `json:"period" validate:"omitempty,oneof=daily weekly monthly quarterly yearly"`
	Trades []TradeRequest `json:"trades" validate:"dive"`
}

// HoldingRequest is one open position.
type HoldingRequest struct {
	Symbol       string          `json:"symbol" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	Sector       string          `json:"sector"`
	Geography    string          `json:"geography"`
}

// RiskRequest is the body of POST /api/analytics/{agentId}/risk.
// Confidence 0 selects the server default. When Benchmark is given, beta is
// measured against it instead of the first holding.
type RiskRequest struct {
	Holdings   []HoldingRequest             `json:"holdings" validate:"required,min=1,dive"`
	Prices     map[string][]decimal.Decimal `json:"prices"`
	Confidence float64                      `json:"confidence" validate:"omitempty,gt=0,lt=1"`
	Benchmark  []float64                    `json:"benchmark"`
}

// ReturnPointRequest is one dated periodic return.
type ReturnPointRequest struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
}

// AttributionRequest is the body of POST /api/analytics/{agentId}/attribution.
// Weight maps are checked for summing to 1 by the analyzer itself.
type AttributionRequest struct {
	PortfolioReturns []ReturnPointRequest `json:"portfolioReturns"`
	BenchmarkReturns []ReturnPointRequest `json:"benchmarkReturns"`
	StrategyWeights  map[string]float64   `json:"strategyWeights" validate:"required,min=1"`
	AssetWeights     map[string]float64   `json:"assetWeights" validate:"required,min=1"`
}

// BenchmarkRequest is the body of POST /api/analytics/{agentId}/benchmark.
type BenchmarkRequest struct {
	PortfolioReturns []ReturnPointRequest `json:"portfolioReturns" validate:"required,min=1"`
	BenchmarkReturns []ReturnPointRequest `json:"benchmarkReturns" validate:"required,min=1"`
}

// AnalyzeRequest runs every applicable component for one agent. Sections left
// out are skipped: risk needs holdings, attribution needs weights and the
// benchmark comparison needs benchmark returns.
type AnalyzeRequest struct {
	Period           string                       `json:"period" validate:"omitempty,oneof=daily weekly monthly quarterly yearly"`
	Trades           []TradeRequest               `json:"trades" validate:"dive"`
	Holdings         []HoldingRequest             `json:"holdings" validate:"dive"`
	Prices           map[string][]decimal.Decimal `json:"prices"`
	Confidence       float64                      `json:"confidence" validate:"omitempty,gt=0,lt=1"`
	PortfolioReturns []ReturnPointRequest         `json:"portfolioReturns"`
	BenchmarkReturns []ReturnPointRequest         `json:"benchmarkReturns"`
	StrategyWeights  map[string]float64           `json:"strategyWeights"`
	AssetWeights     map[string]float64           `json:"assetWeights"`
}

// BatchRequest is the body of POST /api/analytics/batch, keyed by agent ID.
type BatchRequest struct {
	Agents map[string]AnalyzeRequest `json:"agents" validate:"required,min=1,dive"`
}

// ToModel converts the trade to its model form.
func (r TradeRequest) ToModel() model.Trade {
	return model.Trade{
		Symbol:     r.Symbol,
		Strategy:   r.Strategy,
		EntryTime:  r.EntryTime,
		ExitTime:   r.ExitTime,
		EntryPrice: r.EntryPrice.InexactFloat64(),
		ExitPrice:  r.ExitPrice.InexactFloat64(),
		Quantity:   r.Quantity.InexactFloat64(),
		Outcome:    model.TradeOutcome(r.Outcome),
	}
}

// ToModel converts the holding to its model form.
func (r HoldingRequest) ToModel() model.Holding {
	return model.Holding{
		Symbol:       r.Symbol,
		Quantity:     r.Quantity.InexactFloat64(),
		CurrentPrice: r.CurrentPrice.InexactFloat64(),
		Sector:       r.Sector,
		Geography:    r.Geography,
	}
}

// Trades converts a trade list.
func Trades(in []TradeRequest) []model.Trade {
	out := make([]model.Trade, len(in))
	for i, t := range in {
		out[i] = t.ToModel()
	}
	return out
}

// Portfolio builds a portfolio from holdings.
func Portfolio(in []HoldingRequest) model.Portfolio {
	holdings := make([]model.Holding, len(in))
	for i, h := range in {
		holdings[i] = h.ToModel()
	}
	return model.Portfolio{Holdings: holdings}
}

// PriceHistory converts per-symbol decimal price series.
func PriceHistory(in map[string][]decimal.Decimal) model.PriceHistory {
	out := make(model.PriceHistory, len(in))
	for symbol, prices := range in {
		series := make([]float64, len(prices))
		for i, p := range prices {
			series[i] = p.InexactFloat64()
		}
		out[symbol] = series
	}
	return out
}

// ReturnSeries converts a dated return series.
func ReturnSeries(in []ReturnPointRequest) []model.ReturnPoint {
	out := make([]model.ReturnPoint, len(in))
	for i, p := range in {
		out[i] = model.ReturnPoint{Date: p.Date, Return: p.Return}
	}
	return out
}
