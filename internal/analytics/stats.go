// Package analytics implements the pure calculation components of the engine:
// the return and ratio calculator, the portfolio risk assessor, the attribution
// analyzer and the benchmark comparator.
//
// Every function here is deterministic and side-effect free. Degenerate inputs
// (empty series, zero variance, zero denominators) produce documented sentinel
// values instead of errors; only malformed portfolios and allocation maps fail.
package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// mean calculates the arithmetic mean, 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// variance calculates the population variance (divides by n).
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.PopVariance(values, nil)
}

// stddev calculates the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.PopStdDev(values, nil)
}

// covariance calculates the population covariance of two series after
// truncating both to the shorter length.
func covariance(a, b []float64) float64 {
	a, b = align(a, b)
	n := len(a)
	if n < 2 {
		return 0
	}
	// stat.Covariance is the sample estimate; rescale from n-1 to n.
	return stat.Covariance(a, b, nil) * float64(n-1) / float64(n)
}

// pearson calculates the Pearson correlation of two series after truncating
// both to the shorter length. Returns 0 when either series has no variance or
// fewer than two aligned points.
func pearson(a, b []float64) float64 {
	a, b = align(a, b)
	if len(a) < 2 || variance(a) == 0 || variance(b) == 0 {
		return 0
	}
	c := stat.Correlation(a, b, nil)
	if math.IsNaN(c) {
		return 0
	}
	return clamp(c, -1, 1)
}

// align truncates two series to the shorter of the two lengths.
func align(a, b []float64) ([]float64, []float64) {
	n := min(len(a), len(b))
	return a[:n], b[:n]
}

// clamp restricts a value to a range
func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// ReturnsFromPrices converts a chronological price series into simple returns,
// r_i = (p_i - p_{i-1}) / p_{i-1}. Periods whose previous price is zero are
// skipped, so the result may be shorter than len(prices)-1. Fewer than two
// prices yield an empty series.
func ReturnsFromPrices(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1]
		if prev == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prev)/prev)
	}
	return returns
}
