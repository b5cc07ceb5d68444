package model

import "time"

// Holding is one position in a portfolio snapshot.
type Holding struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	CurrentPrice float64 `json:"currentPrice"`
	Sector       string  `json:"sector"`
	Geography    string  `json:"geography"`
}

// Value returns the market value of the holding (quantity * current price).
func (h Holding) Value() float64 {
	return h.Quantity * h.CurrentPrice
}

// Portfolio is a snapshot of holdings, unique by symbol.
// The order of Holdings is significant: the first holding is used as the
// market proxy when no benchmark series is supplied.
type Portfolio struct {
	Holdings []Holding `json:"holdings"`
}

// TotalValue returns the sum of quantity * current price over all holdings.
func (p Portfolio) TotalValue() float64 {
	total := 0.0
	for _, h := range p.Holdings {
		total += h.Value()
	}
	return total
}

// Symbols returns the held symbols in portfolio order.
func (p Portfolio) Symbols() []string {
	symbols := make([]string, len(p.Holdings))
	for i, h := range p.Holdings {
		symbols[i] = h.Symbol
	}
	return symbols
}

// PriceHistory maps a symbol to its chronological, equally spaced prices.
type PriceHistory map[string][]float64

// ReturnPoint is one period of a dated return series.
type ReturnPoint struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
}

// Returns extracts the bare return values from a dated series.
func Returns(series []ReturnPoint) []float64 {
	values := make([]float64, len(series))
	for i, p := range series {
		values[i] = p.Return
	}
	return values
}
