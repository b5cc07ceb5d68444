package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
)

// WeightTolerance is how far an allocation map may drift from summing to 1.
const WeightTolerance = 1e-6

// ValidatePortfolio rejects malformed portfolio snapshots.
//
// A holding is malformed when its symbol is empty or repeated, or when its
// quantity or current price is negative (or not a finite number).
func ValidatePortfolio(p model.Portfolio) error {
	errors := make(map[string]string)
	seen := make(map[string]bool, len(p.Holdings))

	for i, h := range p.Holdings {
		key := fmt.Sprintf("holdings[%d]", i)

		if strings.TrimSpace(h.Symbol) == "" {
			errors[key+".symbol"] = "symbol is required"
		} else if seen[h.Symbol] {
			errors[key+".symbol"] = fmt.Sprintf("duplicate symbol: %s", h.Symbol)
		}
		seen[h.Symbol] = true

		if math.IsNaN(h.Quantity) || math.IsInf(h.Quantity, 0) {
			errors[key+".quantity"] = "quantity must be a finite number"
		} else if h.Quantity < 0 {
			errors[key+".quantity"] = "quantity cannot be negative"
		}

		if math.IsNaN(h.CurrentPrice) || math.IsInf(h.CurrentPrice, 0) {
			errors[key+".currentPrice"] = "currentPrice must be a finite number"
		} else if h.CurrentPrice < 0 {
			errors[key+".currentPrice"] = "currentPrice cannot be negative"
		}
	}

	return newError(errors)
}

// ValidateWeights checks that an allocation map is non-empty, has only finite
// weights, and sums to 1 within WeightTolerance. Negative weights (short
// allocations) are allowed.
func ValidateWeights(name string, weights map[string]float64) error {
	if len(weights) == 0 {
		return &Error{Fields: map[string]string{name: "allocation weights are required"}}
	}

	errors := make(map[string]string)
	sum := 0.0
	for label, w := range weights {
		switch {
		case strings.TrimSpace(label) == "":
			errors[name] = "allocation label cannot be empty"
		case math.IsNaN(w) || math.IsInf(w, 0):
			errors[name+"."+label] = "weight must be a finite number"
		}
		sum += w
	}

	if len(errors) == 0 && math.Abs(sum-1) > WeightTolerance {
		errors[name] = fmt.Sprintf("weights must sum to 1.0, got %.6f", sum)
	}

	return newError(errors)
}
