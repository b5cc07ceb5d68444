package testutil

import (
	"math/rand"
	"time"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
)

// baseTime anchors generated timestamps so builders stay deterministic.
var baseTime = time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)

// TradeBuilder provides a fluent interface for creating test trades.
//
// Example usage:
//
//	// Simple creation with defaults (entry 100, exit 100, quantity 1, untagged)
//	trade := testutil.NewTrade().Build()
//
//	// Customized trade
//	trade := testutil.NewTrade().
//	    WithSymbol("MSFT").
//	    WithPrices(100, 105).
//	    Win().
//	    Build()
type TradeBuilder struct {
	Symbol     string
	Strategy   string
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
	Quantity   float64
	Outcome    model.TradeOutcome
}

// NewTrade creates a TradeBuilder with sensible defaults.
func NewTrade() *TradeBuilder {
	return &TradeBuilder{
		Symbol:     "AAPL",
		Strategy:   "momentum",
		EntryTime:  baseTime,
		ExitTime:   baseTime.Add(4 * time.Hour),
		EntryPrice: 100,
		ExitPrice:  100,
		Quantity:   1,
	}
}

// WithSymbol sets a custom symbol.
func (b *TradeBuilder) WithSymbol(symbol string) *TradeBuilder {
	b.Symbol = symbol
	return b
}

// WithStrategy sets a custom strategy label.
func (b *TradeBuilder) WithStrategy(strategy string) *TradeBuilder {
	b.Strategy = strategy
	return b
}

// WithPrices sets entry and exit prices.
func (b *TradeBuilder) WithPrices(entry, exit float64) *TradeBuilder {
	b.EntryPrice = entry
	b.ExitPrice = exit
	return b
}

// WithQuantity sets a custom quantity.
func (b *TradeBuilder) WithQuantity(quantity float64) *TradeBuilder {
	b.Quantity = quantity
	return b
}

// WithTimes sets entry and exit timestamps.
func (b *TradeBuilder) WithTimes(entry, exit time.Time) *TradeBuilder {
	b.EntryTime = entry
	b.ExitTime = exit
	return b
}

// Win tags the trade as a win.
func (b *TradeBuilder) Win() *TradeBuilder {
	b.Outcome = model.OutcomeWin
	return b
}

// Loss tags the trade as a loss.
func (b *TradeBuilder) Loss() *TradeBuilder {
	b.Outcome = model.OutcomeLoss
	return b
}

// Breakeven tags the trade as breakeven.
func (b *TradeBuilder) Breakeven() *TradeBuilder {
	b.Outcome = model.OutcomeBreakeven
	return b
}

// Build returns the trade. Trades are plain values, so no database is involved.
func (b *TradeBuilder) Build() model.Trade {
	return model.Trade{
		Symbol:     b.Symbol,
		Strategy:   b.Strategy,
		EntryTime:  b.EntryTime,
		ExitTime:   b.ExitTime,
		EntryPrice: b.EntryPrice,
		ExitPrice:  b.ExitPrice,
		Quantity:   b.Quantity,
		Outcome:    b.Outcome,
	}
}

// RandomTrades generates n trades with prices drawn around 100 and roughly a
// third of them carrying an explicit outcome tag.
//
// Example usage:
//
//	rng := rand.New(rand.NewSource(42))
//	trades := testutil.RandomTrades(rng, 25)
func RandomTrades(rng *rand.Rand, n int) []model.Trade {
	symbols := []string{"AAPL", "MSFT", "NVDA", "TSLA", "AMZN"}
	strategies := []string{"momentum", "mean_reversion", "breakout"}

	trades := make([]model.Trade, n)
	for i := range trades {
		entry := 50 + rng.Float64()*100
		exit := entry * (1 + rng.NormFloat64()*0.05)
		b := NewTrade().
			WithSymbol(symbols[rng.Intn(len(symbols))]).
			WithStrategy(strategies[rng.Intn(len(strategies))]).
			WithPrices(entry, exit).
			WithQuantity(float64(1 + rng.Intn(3))).
			WithTimes(baseTime.Add(time.Duration(i)*24*time.Hour), baseTime.Add(time.Duration(i)*24*time.Hour+6*time.Hour))

		switch rng.Intn(9) {
		case 0:
			b.Win()
		case 1:
			b.Loss()
		case 2:
			b.Breakeven()
		}
		trades[i] = b.Build()
	}
	return trades
}

// HoldingBuilder provides a fluent interface for creating test holdings.
//
// Example usage:
//
//	holding := testutil.NewHolding("AAPL").
//	    WithPosition(10, 150).
//	    WithSector("Technology").
//	    Build()
type HoldingBuilder struct {
	Symbol       string
	Quantity     float64
	CurrentPrice float64
	Sector       string
	Geography    string
}

// NewHolding creates a HoldingBuilder for symbol with sensible defaults.
func NewHolding(symbol string) *HoldingBuilder {
	return &HoldingBuilder{
		Symbol:       symbol,
		Quantity:     1,
		CurrentPrice: 100,
		Sector:       "Technology",
		Geography:    "US",
	}
}

// WithPosition sets quantity and current price.
func (b *HoldingBuilder) WithPosition(quantity, price float64) *HoldingBuilder {
	b.Quantity = quantity
	b.CurrentPrice = price
	return b
}

// WithSector sets a custom sector. An empty sector is allowed.
func (b *HoldingBuilder) WithSector(sector string) *HoldingBuilder {
	b.Sector = sector
	return b
}

// WithGeography sets a custom geography. An empty geography is allowed.
func (b *HoldingBuilder) WithGeography(geography string) *HoldingBuilder {
	b.Geography = geography
	return b
}

// Build returns the holding.
func (b *HoldingBuilder) Build() model.Holding {
	return model.Holding{
		Symbol:       b.Symbol,
		Quantity:     b.Quantity,
		CurrentPrice: b.CurrentPrice,
		Sector:       b.Sector,
		Geography:    b.Geography,
	}
}

// NewPortfolio assembles a portfolio from holding builders, preserving order.
//
// Example usage:
//
//	p := testutil.NewPortfolio(
//	    testutil.NewHolding("AAPL").WithPosition(10, 100),
//	    testutil.NewHolding("MSFT").WithPosition(5, 200),
//	)
func NewPortfolio(holdings ...*HoldingBuilder) model.Portfolio {
	p := model.Portfolio{Holdings: make([]model.Holding, len(holdings))}
	for i, h := range holdings {
		p.Holdings[i] = h.Build()
	}
	return p
}

// PricesFromReturns compounds a starting price through a return series,
// yielding len(returns)+1 prices.
//
// Example usage:
//
//	prices := testutil.PricesFromReturns(100, []float64{0.01, -0.02})
//	// Returns: [100, 101, 98.98]
func PricesFromReturns(start float64, returns []float64) []float64 {
	prices := make([]float64, len(returns)+1)
	prices[0] = start
	for i, r := range returns {
		prices[i+1] = prices[i] * (1 + r)
	}
	return prices
}

// RandomReturns draws n normally distributed returns with the given mean and std dev.
func RandomReturns(rng *rand.Rand, n int, mu, sigma float64) []float64 {
	returns := make([]float64, n)
	for i := range returns {
		returns[i] = mu + rng.NormFloat64()*sigma
	}
	return returns
}

// ReturnSeries dates a return series one day apart starting at a fixed date.
//
// Example usage:
//
//	series := testutil.ReturnSeries(0.01, -0.005, 0.02)
func ReturnSeries(returns ...float64) []model.ReturnPoint {
	series := make([]model.ReturnPoint, len(returns))
	for i, r := range returns {
		series[i] = model.ReturnPoint{
			Date:   baseTime.AddDate(0, 0, i).Truncate(24 * time.Hour),
			Return: r,
		}
	}
	return series
}
