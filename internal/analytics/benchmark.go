package analytics

import (
	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
)

// CompareBenchmark regresses portfolio returns against benchmark returns after
// truncating both series to the shorter length. Period dates come from the
// portfolio series.
//
// The fit is ordinary least squares of excess return (portfolio - benchmark) on
// benchmark return:
//
//	excessBeta = cov(excess, benchmark) / var(benchmark)
//	alpha      = mean(excess) - excessBeta * mean(benchmark)
//
// Beta is reported as the portfolio's market sensitivity, 1 + excessBeta, which
// equals cov(portfolio, benchmark) / var(benchmark). Both regressions share the
// same residuals and intercept; RSquared measures the residuals against the
// portfolio's own variation, ExcessRSquared against the excess variation.
//
// Callers after the slope and fit of the excess-return regression itself must
// read ExcessBeta and ExcessRSquared; Beta and RSquared describe the portfolio's
// total return against the benchmark.
//
// With fewer than two periods or a flat benchmark, beta is 1, alpha 0 and both
// R² values 0.
func CompareBenchmark(portfolio, benchmark []model.ReturnPoint) model.BenchmarkComparison {
	n := min(len(portfolio), len(benchmark))

	periods := make([]model.BenchmarkPeriod, n)
	p := make([]float64, n)
	b := make([]float64, n)
	excess := make([]float64, n)
	for i := 0; i < n; i++ {
		p[i] = portfolio[i].Return
		b[i] = benchmark[i].Return
		excess[i] = p[i] - b[i]
		periods[i] = model.BenchmarkPeriod{
			Date:            portfolio[i].Date,
			BenchmarkReturn: b[i],
			PortfolioReturn: p[i],
			ExcessReturn:    excess[i],
		}
	}

	cmp := model.BenchmarkComparison{
		Periods:          periods,
		Beta:             1.0,
		TrackingError:    stddev(excess),
		UpCaptureRatio:   captureRatio(p, b, func(r float64) bool { return r > 0 }),
		DownCaptureRatio: captureRatio(p, b, func(r float64) bool { return r < 0 }),
	}

	if varB := variance(b); n >= 2 && varB != 0 {
		cmp.ExcessBeta = covariance(excess, b) / varB
		cmp.Beta = 1 + cmp.ExcessBeta
		cmp.Alpha = mean(excess) - cmp.ExcessBeta*mean(b)

		ssRes := 0.0
		for i := range excess {
			residual := excess[i] - (cmp.Alpha + cmp.ExcessBeta*b[i])
			ssRes += residual * residual
		}
		cmp.ExcessRSquared = rSquared(ssRes, excess)
		cmp.RSquared = rSquared(ssRes, p)
	}

	if cmp.TrackingError != 0 {
		cmp.InformationRatio = cmp.Alpha / cmp.TrackingError
	}

	return cmp
}

// rSquared is 1 - ssRes / Σ(y - mean(y))², clamped to [0,1], and 0 when y is flat.
func rSquared(ssRes float64, y []float64) float64 {
	m := mean(y)
	ssTot := 0.0
	for _, v := range y {
		ssTot += (v - m) * (v - m)
	}
	if ssTot == 0 {
		return 0
	}
	return clamp(1-ssRes/ssTot, 0, 1)
}

// captureRatio is mean(portfolio | cond(benchmark)) / mean(benchmark | cond(benchmark)).
// Defaults to 1 when no period qualifies or the benchmark mean is zero.
func captureRatio(portfolio, benchmark []float64, cond func(float64) bool) float64 {
	var ps, bs []float64
	for i, r := range benchmark {
		if cond(r) {
			ps = append(ps, portfolio[i])
			bs = append(bs, r)
		}
	}
	if len(bs) == 0 {
		return 1.0
	}
	denom := mean(bs)
	if denom == 0 {
		return 1.0
	}
	return mean(ps) / denom
}
