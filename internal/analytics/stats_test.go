package analytics

import (
	"math"
	"testing"
)

func TestMeanAndVariance(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if got := mean(values); got != 5 {
		t.Errorf("Expected mean 5, got %v", got)
	}
	if got := variance(values); got != 4 {
		t.Errorf("Expected population variance 4, got %v", got)
	}
	if got := stddev(values); got != 2 {
		t.Errorf("Expected stddev 2, got %v", got)
	}
	if got := mean(nil); got != 0 {
		t.Errorf("Expected mean of empty slice to be 0, got %v", got)
	}
	if got := variance(nil); got != 0 {
		t.Errorf("Expected variance of empty slice to be 0, got %v", got)
	}
}

func TestCovariance(t *testing.T) {
	// Population covariance: sum((a-2)(b-4)) / 3 = (2 + 0 + 2) / 3.
	if got := covariance([]float64{1, 2, 3}, []float64{2, 4, 6}); math.Abs(got-4.0/3.0) > 1e-12 {
		t.Errorf("Expected 4/3, got %v", got)
	}
	if got := covariance([]float64{1}, []float64{2}); got != 0 {
		t.Errorf("Expected 0 for a single point, got %v", got)
	}
	if got := covariance([]float64{1, 2, 3, 100}, []float64{2, 4, 6}); math.Abs(got-4.0/3.0) > 1e-12 {
		t.Errorf("Expected truncation to the shorter series, got %v", got)
	}
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"perfect positive", []float64{1, 2, 3}, []float64{2, 4, 6}, 1},
		{"perfect negative", []float64{1, 2, 3}, []float64{3, 2, 1}, -1},
		{"flat series", []float64{1, 1, 1}, []float64{1, 2, 3}, 0},
		{"single point", []float64{1}, []float64{2}, 0},
		{"truncated", []float64{1, 2, 3, 100}, []float64{2, 4, 6}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pearson(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestReturnsFromPrices(t *testing.T) {
	t.Run("simple returns", func(t *testing.T) {
		got := ReturnsFromPrices([]float64{100, 110, 99})

		if len(got) != 2 {
			t.Fatalf("Expected 2 returns, got %d", len(got))
		}
		if math.Abs(got[0]-0.1) > 1e-12 || math.Abs(got[1]+0.1) > 1e-12 {
			t.Errorf("Expected [0.1 -0.1], got %v", got)
		}
	})

	t.Run("zero previous price is skipped", func(t *testing.T) {
		got := ReturnsFromPrices([]float64{0, 10, 20})

		if len(got) != 1 || got[0] != 1 {
			t.Errorf("Expected [1], got %v", got)
		}
	})

	t.Run("fewer than two prices", func(t *testing.T) {
		if got := ReturnsFromPrices([]float64{42}); len(got) != 0 {
			t.Errorf("Expected empty series, got %v", got)
		}
	})
}

func TestClamp(t *testing.T) {
	if got := clamp(1.5, -1, 1); got != 1 {
		t.Errorf("Expected 1, got %v", got)
	}
	if got := clamp(-3, -1, 1); got != -1 {
		t.Errorf("Expected -1, got %v", got)
	}
	if got := clamp(0.25, -1, 1); got != 0.25 {
		t.Errorf("Expected 0.25, got %v", got)
	}
}
