package model

import "testing"

// TestAgentSnapshot_Clone verifies that mutating a clone never reaches the original.
//
// WHY: The results store hands clones to concurrent readers; a shared map
// would let one request corrupt another agent's stored risk metrics.
func TestAgentSnapshot_Clone(t *testing.T) {
	original := AgentSnapshot{
		AgentID: "agent-1",
		Metrics: &PerformanceMetrics{TotalReturn: 0.1},
		Risk: &RiskMetrics{
			CorrelationMatrix: map[string]map[string]float64{"AAPL": {"AAPL": 1}},
			StressTests:       []StressTestResult{{Scenario: "Market Crash"}},
			Concentration: ConcentrationRisk{
				SectorConcentration:    map[string]float64{"Technology": 1},
				GeographyConcentration: map[string]float64{"US": 1},
			},
		},
		Attribution: &PerformanceAttribution{StrategyContribution: map[string]float64{"momentum": 0.01}},
		Benchmark:   &BenchmarkComparison{Periods: []BenchmarkPeriod{{ExcessReturn: 0.01}}},
	}

	clone := original.Clone()
	clone.Metrics.TotalReturn = 9
	clone.Risk.CorrelationMatrix["AAPL"]["AAPL"] = 0
	clone.Risk.StressTests[0].Scenario = "changed"
	clone.Risk.Concentration.SectorConcentration["Technology"] = 0
	clone.Attribution.StrategyContribution["momentum"] = 0
	clone.Benchmark.Periods[0].ExcessReturn = 0

	if original.Metrics.TotalReturn != 0.1 {
		t.Error("Metrics were shared with the clone")
	}
	if original.Risk.CorrelationMatrix["AAPL"]["AAPL"] != 1 {
		t.Error("Correlation matrix was shared with the clone")
	}
	if original.Risk.StressTests[0].Scenario != "Market Crash" {
		t.Error("Stress tests were shared with the clone")
	}
	if original.Risk.Concentration.SectorConcentration["Technology"] != 1 {
		t.Error("Sector concentration was shared with the clone")
	}
	if original.Attribution.StrategyContribution["momentum"] != 0.01 {
		t.Error("Attribution was shared with the clone")
	}
	if original.Benchmark.Periods[0].ExcessReturn != 0.01 {
		t.Error("Benchmark periods were shared with the clone")
	}
}

func TestAgentSnapshot_CloneEmpty(t *testing.T) {
	clone := AgentSnapshot{AgentID: "agent-1"}.Clone()

	if clone.Metrics != nil || clone.Risk != nil || clone.Attribution != nil || clone.Benchmark != nil {
		t.Error("Expected nil results to stay nil")
	}
}
