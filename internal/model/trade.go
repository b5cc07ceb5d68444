package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/apperrors"
)

// TradeOutcome tags a closed trade as a win, loss or breakeven.
type TradeOutcome string

const (
	OutcomeWin       TradeOutcome = "win"
	OutcomeLoss      TradeOutcome = "loss"
	OutcomeBreakeven TradeOutcome = "breakeven"
)

// Trade represents a single closed trade produced by the execution layer.
// Trades are never mutated once recorded.
type Trade struct {
	Symbol     string       `json:"symbol"`
	Strategy   string       `json:"strategy"`
	EntryTime  time.Time    `json:"entryTime"`
	ExitTime   time.Time    `json:"exitTime"`
	EntryPrice float64      `json:"entryPrice"`
	ExitPrice  float64      `json:"exitPrice"`
	Quantity   float64      `json:"quantity"`
	Outcome    TradeOutcome `json:"outcome,omitempty"`
}

// Return is the trade's P&L contribution: (exit - entry) / entry * quantity.
// A zero entry price yields 0 since the relative move is undefined.
func (t Trade) Return() float64 {
	if t.EntryPrice == 0 {
		return 0
	}
	return (t.ExitPrice - t.EntryPrice) / t.EntryPrice * t.Quantity
}

// IsWin reports whether the trade counts as a winning trade. The outcome tag
// wins over the sign of the return; untagged trades fall back to the sign.
func (t Trade) IsWin() bool {
	switch t.Outcome {
	case OutcomeWin:
		return true
	case OutcomeLoss, OutcomeBreakeven:
		return false
	}
	return t.Return() > 0
}

// IsLoss reports whether the trade counts as a losing trade.
func (t Trade) IsLoss() bool {
	switch t.Outcome {
	case OutcomeLoss:
		return true
	case OutcomeWin, OutcomeBreakeven:
		return false
	}
	return t.Return() < 0
}

// ReportingPeriod is the granularity used to annualize returns.
type ReportingPeriod string

const (
	PeriodDaily     ReportingPeriod = "daily"
	PeriodWeekly    ReportingPeriod = "weekly"
	PeriodMonthly   ReportingPeriod = "monthly"
	PeriodQuarterly ReportingPeriod = "quarterly"
	PeriodYearly    ReportingPeriod = "yearly"
)

// PeriodsPerYear returns the number of reporting periods in a year.
// Unknown periods are treated as daily.
func (p ReportingPeriod) PeriodsPerYear() int {
	switch p {
	case PeriodWeekly:
		return 52
	case PeriodMonthly:
		return 12
	case PeriodQuarterly:
		return 4
	case PeriodYearly:
		return 1
	default:
		return 252
	}
}

// ParseReportingPeriod converts a user-supplied string into a ReportingPeriod.
// An empty string defaults to daily.
func ParseReportingPeriod(s string) (ReportingPeriod, error) {
	switch p := ReportingPeriod(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodDaily, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidPeriod, s)
	}
}
