package analytics_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/analytics"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/testutil"
)

// TestCompareBenchmark_IdenticalSeries checks a portfolio that tracks its benchmark exactly.
//
// WHY: Identical series carry no active return and full market exposure, so
// alpha is 0, beta 1, R² 1 and tracking error 0.
func TestCompareBenchmark_IdenticalSeries(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	series := testutil.ReturnSeries(testutil.RandomReturns(rng, 50, 0.001, 0.02)...)

	cmp := analytics.CompareBenchmark(series, series)

	assert.InDelta(t, 0.0, cmp.Alpha, 1e-9)
	assert.InDelta(t, 1.0, cmp.Beta, 1e-9)
	assert.InDelta(t, 0.0, cmp.ExcessBeta, 1e-9)
	assert.InDelta(t, 1.0, cmp.RSquared, 1e-9)
	assert.Equal(t, 0.0, cmp.TrackingError)
	assert.Equal(t, 0.0, cmp.InformationRatio)
	assert.InDelta(t, 1.0, cmp.UpCaptureRatio, 1e-9)
	assert.InDelta(t, 1.0, cmp.DownCaptureRatio, 1e-9)
	require.Len(t, cmp.Periods, 50)
	for _, p := range cmp.Periods {
		assert.Equal(t, 0.0, p.ExcessReturn)
	}
}

func TestCompareBenchmark_LinearRelationship(t *testing.T) {
	bench := []float64{0.01, -0.02, 0.015, 0.03, -0.01, 0.005}
	port := make([]float64, len(bench))
	for i, b := range bench {
		port[i] = 0.002 + 1.5*b
	}

	cmp := analytics.CompareBenchmark(testutil.ReturnSeries(port...), testutil.ReturnSeries(bench...))

	// excess = 0.002 + 0.5 * benchmark
	assert.InDelta(t, 0.002, cmp.Alpha, 1e-12)
	assert.InDelta(t, 0.5, cmp.ExcessBeta, 1e-9)
	assert.InDelta(t, 1.5, cmp.Beta, 1e-9)
	assert.InDelta(t, 1.0, cmp.RSquared, 1e-9)
	assert.InDelta(t, 1.0, cmp.ExcessRSquared, 1e-9)
	assert.Greater(t, cmp.TrackingError, 0.0)
	assert.InDelta(t, cmp.Alpha/cmp.TrackingError, cmp.InformationRatio, 1e-12)
}

func TestCompareBenchmark_Defaults(t *testing.T) {
	t.Run("fewer than two periods", func(t *testing.T) {
		cmp := analytics.CompareBenchmark(testutil.ReturnSeries(0.01), testutil.ReturnSeries(0.02))

		assert.Equal(t, 1.0, cmp.Beta)
		assert.Equal(t, 0.0, cmp.Alpha)
		assert.Equal(t, 0.0, cmp.RSquared)
		require.Len(t, cmp.Periods, 1)
		assert.InDelta(t, -0.01, cmp.Periods[0].ExcessReturn, tolerance)
	})

	t.Run("flat benchmark", func(t *testing.T) {
		cmp := analytics.CompareBenchmark(
			testutil.ReturnSeries(0.01, 0.03, -0.02),
			testutil.ReturnSeries(0, 0, 0),
		)

		assert.Equal(t, 1.0, cmp.Beta)
		assert.Equal(t, 0.0, cmp.Alpha)
		assert.Equal(t, 0.0, cmp.RSquared)
		assert.Equal(t, 1.0, cmp.DownCaptureRatio, "no down periods")
	})

	t.Run("empty", func(t *testing.T) {
		cmp := analytics.CompareBenchmark(nil, nil)

		assert.Empty(t, cmp.Periods)
		assert.Equal(t, 1.0, cmp.Beta)
		assert.Equal(t, 1.0, cmp.UpCaptureRatio)
	})
}

func TestCompareBenchmark_Truncation(t *testing.T) {
	portfolio := testutil.ReturnSeries(0.01, 0.02, 0.03, 0.04)
	benchmark := testutil.ReturnSeries(0.01, 0.01)

	cmp := analytics.CompareBenchmark(portfolio, benchmark)

	require.Len(t, cmp.Periods, 2)
	assert.Equal(t, portfolio[1].Date, cmp.Periods[1].Date)
	assert.InDelta(t, 0.01, cmp.Periods[1].ExcessReturn, tolerance)
}

func TestCompareBenchmark_CaptureRatios(t *testing.T) {
	portfolio := testutil.ReturnSeries(0.02, -0.01, 0.04, -0.03)
	benchmark := testutil.ReturnSeries(0.01, -0.02, 0.02, -0.02)

	cmp := analytics.CompareBenchmark(portfolio, benchmark)

	// up: mean(0.02, 0.04) / mean(0.01, 0.02); down: mean(-0.01, -0.03) / mean(-0.02, -0.02)
	assert.InDelta(t, 2.0, cmp.UpCaptureRatio, tolerance)
	assert.InDelta(t, 1.0, cmp.DownCaptureRatio, tolerance)
}

// TestCompareBenchmark_RSquaredBounds checks R² stays within [0,1] on random data.
func TestCompareBenchmark_RSquaredBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(17))

	for i := 0; i < 200; i++ {
		n := 2 + rng.Intn(40)
		cmp := analytics.CompareBenchmark(
			testutil.ReturnSeries(testutil.RandomReturns(rng, n, 0, 0.03)...),
			testutil.ReturnSeries(testutil.RandomReturns(rng, n, 0, 0.02)...),
		)

		require.GreaterOrEqual(t, cmp.RSquared, 0.0)
		require.LessOrEqual(t, cmp.RSquared, 1.0)
		require.GreaterOrEqual(t, cmp.ExcessRSquared, 0.0)
		require.LessOrEqual(t, cmp.ExcessRSquared, 1.0)
		require.GreaterOrEqual(t, cmp.TrackingError, 0.0)
	}
}

// TestCompareBenchmark_Idempotent verifies identical inputs give identical results.
func TestCompareBenchmark_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	portfolio := testutil.ReturnSeries(testutil.RandomReturns(rng, 45, 0.001, 0.02)...)
	benchmark := testutil.ReturnSeries(testutil.RandomReturns(rng, 50, 0.0005, 0.015)...)

	first := analytics.CompareBenchmark(portfolio, benchmark)
	second := analytics.CompareBenchmark(portfolio, benchmark)

	assert.Equal(t, first, second)
}

// TestCompareBenchmark_ExcessRegression pins ExcessBeta and ExcessRSquared to the
// slope and fit of excess return regressed on benchmark return.
//
// WHY: API consumers read these two fields for the excess regression, while
// Beta and RSquared describe total return; a noisy series keeps the pairs apart.
func TestCompareBenchmark_ExcessRegression(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	bench := testutil.RandomReturns(rng, 60, 0.0005, 0.015)
	port := make([]float64, len(bench))
	for i, b := range bench {
		port[i] = 0.001 + 1.2*b + rng.NormFloat64()*0.01
	}

	cmp := analytics.CompareBenchmark(testutil.ReturnSeries(port...), testutil.ReturnSeries(bench...))

	n := float64(len(bench))
	var meanB, meanE float64
	for i, b := range bench {
		meanB += b / n
		meanE += (port[i] - b) / n
	}
	var covEB, varB, ssTot float64
	for i, b := range bench {
		e := port[i] - b
		covEB += (e - meanE) * (b - meanB)
		varB += (b - meanB) * (b - meanB)
		ssTot += (e - meanE) * (e - meanE)
	}
	wantSlope := covEB / varB
	wantAlpha := meanE - wantSlope*meanB
	var ssRes float64
	for i, b := range bench {
		r := port[i] - b - (wantAlpha + wantSlope*b)
		ssRes += r * r
	}

	assert.InDelta(t, wantSlope, cmp.ExcessBeta, 1e-9)
	assert.InDelta(t, 1-ssRes/ssTot, cmp.ExcessRSquared, 1e-9)
	assert.InDelta(t, 1+cmp.ExcessBeta, cmp.Beta, 1e-12)
	assert.NotEqual(t, cmp.RSquared, cmp.ExcessRSquared)
}
