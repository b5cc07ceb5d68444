package analytics

import (
	"math"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
)

const (
	// DefaultOmegaThreshold partitions gains from losses in the Omega ratio.
	DefaultOmegaThreshold = 0.0

	// downsideVolatilityFloor replaces a zero downside deviation in the Sortino ratio.
	downsideVolatilityFloor = 1e-4

	// omegaCap is reported when there are gains above the threshold but no losses.
	omegaCap = 10.0
)

// CalculatePerformance turns an ordered trade list into return, volatility,
// drawdown, win/loss statistics and risk-adjusted ratios. The reporting period
// is only used to annualize the total return.
func CalculatePerformance(trades []model.Trade, period model.ReportingPeriod) model.PerformanceMetrics {
	return CalculatePerformanceWithThreshold(trades, period, DefaultOmegaThreshold)
}

// CalculatePerformanceWithThreshold is CalculatePerformance with a custom Omega threshold.
//
// Sentinel values for degenerate inputs:
//   - Volatility is 0 with fewer than two trades; Sharpe is 0 when volatility is 0.
//   - Sortino divides by 1e-4 when there is no downside deviation.
//   - Calmar is 0 when the max drawdown is 0.
//   - Omega is 10 when nothing falls at or below the threshold but gains exist, else 1.
//   - Profit factor is +Inf with wins but no losses, and 1 with neither.
//   - Annualized return is -1 when the total return is below -100%.
func CalculatePerformanceWithThreshold(trades []model.Trade, period model.ReportingPeriod, omegaThreshold float64) model.PerformanceMetrics {
	returns := make([]float64, len(trades))
	for i, t := range trades {
		returns[i] = t.Return()
	}

	totalReturn := 0.0
	for _, r := range returns {
		totalReturn += r
	}

	volatility := 0.0
	if len(returns) >= 2 {
		volatility = stddev(returns)
	}

	metrics := model.PerformanceMetrics{
		Period:           period,
		TotalReturn:      totalReturn,
		AnnualizedReturn: model.Ratio(annualize(totalReturn, period.PeriodsPerYear())),
		Volatility:       volatility,
		MaxDrawdown:      maxDrawdown(trades),
		OmegaRatio:       omegaRatio(returns, omegaThreshold),
		InformationRatio: informationRatio(returns),
		SortinoRatio:     totalReturn / downsideVolatility(returns),
		TotalTrades:      len(trades),
	}

	if volatility != 0 {
		metrics.SharpeRatio = totalReturn / volatility
	}
	if metrics.MaxDrawdown != 0 {
		metrics.CalmarRatio = model.Ratio(float64(metrics.AnnualizedReturn) / math.Abs(metrics.MaxDrawdown))
	}

	applyWinLoss(&metrics, trades, returns)

	return metrics
}

func annualize(totalReturn float64, periodsPerYear int) float64 {
	base := 1 + totalReturn
	if base < 0 {
		return -1
	}
	return math.Pow(base, float64(periodsPerYear)) - 1
}

// maxDrawdown tracks a running peak of exit prices seeded with the first
// trade's entry price and reports the deepest fall from that peak.
func maxDrawdown(trades []model.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}

	peak := trades[0].EntryPrice
	worst := 0.0
	for _, t := range trades {
		if t.ExitPrice > peak {
			peak = t.ExitPrice
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - t.ExitPrice) / peak; dd > worst {
			worst = dd
		}
	}
	return worst
}

func downsideVolatility(returns []float64) float64 {
	negatives := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	if len(negatives) == 0 {
		return downsideVolatilityFloor
	}
	if dv := stddev(negatives); dv > 0 {
		return dv
	}
	return downsideVolatilityFloor
}

func omegaRatio(returns []float64, threshold float64) float64 {
	gains, losses := 0.0, 0.0
	for _, r := range returns {
		if r > threshold {
			gains += r - threshold
		} else {
			losses += threshold - r
		}
	}
	if losses == 0 {
		if gains > 0 {
			return omegaCap
		}
		return 1
	}
	return gains / losses
}

// informationRatio uses the mean trade return as a synthetic benchmark.
func informationRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	benchmark := mean(returns)
	active := make([]float64, len(returns))
	for i, r := range returns {
		active[i] = r - benchmark
	}
	sd := stddev(active)
	if sd == 0 {
		return 0
	}
	return mean(active) / sd
}

func applyWinLoss(m *model.PerformanceMetrics, trades []model.Trade, returns []float64) {
	totalWins, totalLosses := 0.0, 0.0
	for i, t := range trades {
		r := returns[i]
		switch {
		case t.IsWin():
			if m.WinningTrades == 0 || r > m.LargestWin {
				m.LargestWin = r
			}
			m.WinningTrades++
			totalWins += r
		case t.IsLoss():
			if m.LosingTrades == 0 || r < m.LargestLoss {
				m.LargestLoss = r
			}
			m.LosingTrades++
			totalLosses += r
		}
	}
	totalLosses = math.Abs(totalLosses)

	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades)
	}
	if m.WinningTrades > 0 {
		m.AverageWin = totalWins / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AverageLoss = -totalLosses / float64(m.LosingTrades)
	}

	switch {
	case totalLosses > 0:
		m.ProfitFactor = model.Ratio(totalWins / totalLosses)
	case totalWins > 0:
		m.ProfitFactor = model.Ratio(math.Inf(1))
	default:
		m.ProfitFactor = 1
	}
}
