package service

import (
	"context"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
)

// ResultsStore retains the latest analytics results per agent plus the
// agent's performance metrics history.
//
// Implementations must be safe for concurrent use. Each Put publishes a fully
// built value and readers receive copies, so a reader never sees a partially
// written snapshot. PutSnapshot publishes every non-nil part of a snapshot as
// one write: a reader sees either all of them or none. Latest and
// MetricsHistory return apperrors.ErrAgentNotFound for agents with nothing
// stored.
type ResultsStore interface {
	PutMetrics(ctx context.Context, agentID string, m model.PerformanceMetrics) error
	PutRisk(ctx context.Context, agentID string, r model.RiskMetrics) error
	PutAttribution(ctx context.Context, agentID string, a model.PerformanceAttribution) error
	PutBenchmark(ctx context.Context, agentID string, b model.BenchmarkComparison) error
	PutSnapshot(ctx context.Context, agentID string, snapshot model.AgentSnapshot) error
	Latest(ctx context.Context, agentID string) (model.AgentSnapshot, error)
	MetricsHistory(ctx context.Context, agentID string) ([]model.PerformanceMetrics, error)
	Agents(ctx context.Context) ([]string, error)
}

// SnapshotFinder is implemented by stores that keep every write as an
// individually addressable row.
type SnapshotFinder interface {
	Snapshot(ctx context.Context, id string) (model.StoredSnapshot, error)
}
