package analytics

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
)

// StressScenarioProvider supplies the scenarios a portfolio is stress tested against.
// Implementations may condition the scenarios on the portfolio's composition.
type StressScenarioProvider interface {
	Scenarios(p model.Portfolio) []model.StressScenario
}

// StaticScenarios is a fixed scenario table that ignores the portfolio.
type StaticScenarios []model.StressScenario

// Scenarios implements StressScenarioProvider.
func (s StaticScenarios) Scenarios(model.Portfolio) []model.StressScenario {
	out := make([]model.StressScenario, len(s))
	copy(out, s)
	return out
}

// DefaultStressScenarios returns the built-in scenario table.
func DefaultStressScenarios() StaticScenarios {
	return StaticScenarios{
		{Name: "Market Crash", Loss: 0.30, Probability: 0.05},
		{Name: "Sector Downturn", Loss: 0.15, Probability: 0.15},
		{Name: "Interest Rate Hike", Loss: 0.10, Probability: 0.20},
		{Name: "Geopolitical Event", Loss: 0.20, Probability: 0.10},
	}
}

type scenarioFile struct {
	Scenarios []model.StressScenario `yaml:"scenarios"`
}

// LoadScenarioFile reads a scenario table from a YAML file of the form:
//
//	scenarios:
//	  - name: Market Crash
//	    loss: 0.30
//	    probability: 0.05
func LoadScenarioFile(path string) (StaticScenarios, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenarios(data)
}

// ParseScenarios decodes and checks a YAML scenario table.
func ParseScenarios(data []byte) (StaticScenarios, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario file contains no scenarios")
	}
	for i, s := range file.Scenarios {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("scenario %d: name is required", i)
		}
		if s.Loss < 0 || s.Loss > 1 {
			return nil, fmt.Errorf("scenario %q: loss must be within [0,1]", s.Name)
		}
		if s.Probability < 0 || s.Probability > 1 {
			return nil, fmt.Errorf("scenario %q: probability must be within [0,1]", s.Name)
		}
	}
	return StaticScenarios(file.Scenarios), nil
}

// PortfolioConditionedScenarios scales each base scenario's loss by the
// portfolio's concentration: loss * (1 + HHI), capped at a total loss.
// A single-holding portfolio (HHI = 1) doubles every loss; a widely spread one
// stays close to the base table.
type PortfolioConditionedScenarios struct {
	Base StressScenarioProvider
}

// Scenarios implements StressScenarioProvider.
func (c PortfolioConditionedScenarios) Scenarios(p model.Portfolio) []model.StressScenario {
	base := c.Base
	if base == nil {
		base = DefaultStressScenarios()
	}
	hhi := Concentration(p).HerfindahlIndex

	scenarios := slices.Clone(base.Scenarios(p))
	for i := range scenarios {
		scenarios[i].Loss = math.Min(1, scenarios[i].Loss*(1+hhi))
	}
	return scenarios
}

// StressTest applies the provider's scenarios to the portfolio.
func StressTest(p model.Portfolio, provider StressScenarioProvider) []model.StressTestResult {
	if provider == nil {
		provider = DefaultStressScenarios()
	}
	total := p.TotalValue()

	scenarios := provider.Scenarios(p)
	results := make([]model.StressTestResult, len(scenarios))
	for i, s := range scenarios {
		results[i] = model.StressTestResult{
			Scenario:      s.Name,
			Loss:          s.Loss,
			Probability:   s.Probability,
			ImpactScore:   s.Loss * s.Probability,
			EstimatedLoss: s.Loss * total,
		}
	}
	return results
}
