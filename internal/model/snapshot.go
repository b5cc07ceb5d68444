package model

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// SnapshotKind identifies which analytics result a stored snapshot holds.
type SnapshotKind string

const (
	KindMetrics     SnapshotKind = "metrics"
	KindRisk        SnapshotKind = "risk"
	KindAttribution SnapshotKind = "attribution"
	KindBenchmark   SnapshotKind = "benchmark"
)

// AgentSnapshot is the latest analytics state retained for one agent.
// Any of the four results may be nil if that analysis has not run yet.
type AgentSnapshot struct {
	AgentID     string                  `json:"agentId"`
	Metrics     *PerformanceMetrics     `json:"metrics,omitempty"`
	Risk        *RiskMetrics            `json:"risk,omitempty"`
	Attribution *PerformanceAttribution `json:"attribution,omitempty"`
	Benchmark   *BenchmarkComparison    `json:"benchmark,omitempty"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

// StoredSnapshot is one persisted analytics result as kept by the history store.
type StoredSnapshot struct {
	ID        string          `json:"id"`
	AgentID   string          `json:"agentId"`
	Kind      SnapshotKind    `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Recommendation is a suggested follow-up derived from an agent's analytics.
type Recommendation struct {
	Category string `json:"category"`
	Priority int    `json:"priority"` // 1 is most urgent
	Title    string `json:"title"`
	Action   string `json:"action"`
}

// AgentReport merges an agent's latest results into readable insights.
type AgentReport struct {
	AgentID         string           `json:"agentId"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	Insights        []string         `json:"insights"`
	Recommendations []Recommendation `json:"recommendations"`
	Snapshot        AgentSnapshot    `json:"snapshot"`
}

// Clone returns a deep copy so callers can never alias stored maps or slices.
func (s AgentSnapshot) Clone() AgentSnapshot {
	out := s
	if s.Metrics != nil {
		m := *s.Metrics
		out.Metrics = &m
	}
	if s.Risk != nil {
		r := s.Risk.Clone()
		out.Risk = &r
	}
	if s.Attribution != nil {
		a := s.Attribution.Clone()
		out.Attribution = &a
	}
	if s.Benchmark != nil {
		b := s.Benchmark.Clone()
		out.Benchmark = &b
	}
	return out
}

// Clone returns a deep copy of the risk metrics.
func (r RiskMetrics) Clone() RiskMetrics {
	out := r
	if r.CorrelationMatrix != nil {
		out.CorrelationMatrix = make(map[string]map[string]float64, len(r.CorrelationMatrix))
		for k, row := range r.CorrelationMatrix {
			out.CorrelationMatrix[k] = maps.Clone(row)
		}
	}
	out.StressTests = slices.Clone(r.StressTests)
	out.Concentration.SectorConcentration = maps.Clone(r.Concentration.SectorConcentration)
	out.Concentration.GeographyConcentration = maps.Clone(r.Concentration.GeographyConcentration)
	return out
}

// Clone returns a deep copy of the attribution.
func (a PerformanceAttribution) Clone() PerformanceAttribution {
	out := a
	out.StrategyContribution = maps.Clone(a.StrategyContribution)
	out.AssetAllocationContribution = maps.Clone(a.AssetAllocationContribution)
	out.SecuritySelectionContribution = maps.Clone(a.SecuritySelectionContribution)
	return out
}

// Clone returns a deep copy of the benchmark comparison.
func (b BenchmarkComparison) Clone() BenchmarkComparison {
	out := b
	out.Periods = slices.Clone(b.Periods)
	return out
}
