package analytics

import (
	"errors"
	"fmt"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/validation"
)

const (
	// timingShare is the fraction of the active return credited to timing.
	timingShare = 0.3
	// marketTimingShare is the fraction of the timing contribution credited to market timing.
	marketTimingShare = 0.6
)

// Attribute decomposes the portfolio's mean return relative to the benchmark.
//
// Each strategy and asset receives weight * mean(portfolio returns); security
// selection is the active return mean(portfolio) - mean(benchmark); timing is
// 0.3 of the active return and market timing 0.6 of timing. Currency is not
// modeled and is always 0. TotalAttribution is the exact sum of the parts.
//
// Both weight maps must sum to 1; otherwise a validation error is returned.
// The two series are truncated to the shorter length before averaging.
func Attribute(portfolio, benchmark []model.ReturnPoint, strategyWeights, assetWeights map[string]float64) (model.PerformanceAttribution, error) {
	if err := errors.Join(
		validation.ValidateWeights("strategyWeights", strategyWeights),
		validation.ValidateWeights("assetWeights", assetWeights),
	); err != nil {
		return model.PerformanceAttribution{}, fmt.Errorf("invalid allocation: %w", mergeValidation(err))
	}

	p, b := align(model.Returns(portfolio), model.Returns(benchmark))
	meanPortfolio := mean(p)
	active := meanPortfolio - mean(b)

	attribution := model.PerformanceAttribution{
		StrategyContribution:          scaleWeights(strategyWeights, meanPortfolio),
		AssetAllocationContribution:   scaleWeights(assetWeights, meanPortfolio),
		SecuritySelectionContribution: map[string]float64{model.SecuritySelectionKey: active},
		TimingContribution:            timingShare * active,
		CurrencyContribution:          0,
	}
	attribution.MarketTimingContribution = marketTimingShare * attribution.TimingContribution
	attribution.TotalAttribution = attribution.SumComponents()

	return attribution, nil
}

func scaleWeights(weights map[string]float64, factor float64) map[string]float64 {
	out := make(map[string]float64, len(weights))
	for label, w := range weights {
		out[label] = w * factor
	}
	return out
}

// mergeValidation folds the field maps of several joined validation errors into one.
func mergeValidation(err error) error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return err
	}
	fields := make(map[string]string)
	for _, e := range joined.Unwrap() {
		var verr *validation.Error
		if !errors.As(e, &verr) {
			return err
		}
		for k, v := range verr.Fields {
			fields[k] = v
		}
	}
	return &validation.Error{Fields: fields}
}
