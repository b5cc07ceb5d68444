package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/apperrors"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
)

type agentEntry struct {
	snapshot model.AgentSnapshot
	history  []model.PerformanceMetrics
}

// MemoryResultsStore keeps the latest analytics snapshot and the metrics
// history of every agent in process memory.
//
// All methods are safe for concurrent use. Writers hold the lock only while
// swapping in an already built value and readers get deep copies, so a read
// never observes a half-written snapshot.
type MemoryResultsStore struct {
	mu     sync.RWMutex
	agents map[string]*agentEntry
	now    func() time.Time
}

// NewMemoryResultsStore creates an empty in-memory store.
func NewMemoryResultsStore() *MemoryResultsStore {
	return &MemoryResultsStore{
		agents: make(map[string]*agentEntry),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// update runs fn against the agent's entry under the write lock, creating the
// entry on first use.
func (s *MemoryResultsStore) update(ctx context.Context, agentID string, fn func(e *agentEntry)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.agents[agentID]
	if !ok {
		e = &agentEntry{snapshot: model.AgentSnapshot{AgentID: agentID}}
		s.agents[agentID] = e
	}
	fn(e)
	e.snapshot.UpdatedAt = s.now()
	return nil
}

// PutMetrics replaces the agent's latest performance metrics and appends them to its history.
func (s *MemoryResultsStore) PutMetrics(ctx context.Context, agentID string, m model.PerformanceMetrics) error {
	return s.update(ctx, agentID, func(e *agentEntry) {
		e.snapshot.Metrics = &m
		e.history = append(e.history, m)
	})
}

// PutRisk replaces the agent's latest risk metrics.
func (s *MemoryResultsStore) PutRisk(ctx context.Context, agentID string, r model.RiskMetrics) error {
	r = r.Clone()
	return s.update(ctx, agentID, func(e *agentEntry) {
		e.snapshot.Risk = &r
	})
}

// PutAttribution replaces the agent's latest attribution.
func (s *MemoryResultsStore) PutAttribution(ctx context.Context, agentID string, a model.PerformanceAttribution) error {
	a = a.Clone()
	return s.update(ctx, agentID, func(e *agentEntry) {
		e.snapshot.Attribution = &a
	})
}

// PutBenchmark replaces the agent's latest benchmark comparison.
func (s *MemoryResultsStore) PutBenchmark(ctx context.Context, agentID string, b model.BenchmarkComparison) error {
	b = b.Clone()
	return s.update(ctx, agentID, func(e *agentEntry) {
		e.snapshot.Benchmark = &b
	})
}

// PutSnapshot replaces every non-nil part of the agent's snapshot under a single
// lock, appending the metrics to the history when present.
func (s *MemoryResultsStore) PutSnapshot(ctx context.Context, agentID string, snapshot model.AgentSnapshot) error {
	snapshot = snapshot.Clone()
	return s.update(ctx, agentID, func(e *agentEntry) {
		if snapshot.Metrics != nil {
			e.snapshot.Metrics = snapshot.Metrics
			e.history = append(e.history, *snapshot.Metrics)
		}
		if snapshot.Risk != nil {
			e.snapshot.Risk = snapshot.Risk
		}
		if snapshot.Attribution != nil {
			e.snapshot.Attribution = snapshot.Attribution
		}
		if snapshot.Benchmark != nil {
			e.snapshot.Benchmark = snapshot.Benchmark
		}
	})
}

// Latest returns a copy of the agent's most recent snapshot.
// Returns apperrors.ErrAgentNotFound if nothing was stored for the agent.
func (s *MemoryResultsStore) Latest(ctx context.Context, agentID string) (model.AgentSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.AgentSnapshot{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.agents[agentID]
	if !ok {
		return model.AgentSnapshot{}, apperrors.ErrAgentNotFound
	}
	return e.snapshot.Clone(), nil
}

// MetricsHistory returns every stored metrics record for the agent, oldest first.
// Returns apperrors.ErrAgentNotFound if nothing was stored for the agent.
func (s *MemoryResultsStore) MetricsHistory(ctx context.Context, agentID string) ([]model.PerformanceMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.agents[agentID]
	if !ok {
		return nil, apperrors.ErrAgentNotFound
	}
	history := slices.Clone(e.history)
	if history == nil {
		history = []model.PerformanceMetrics{}
	}
	return history, nil
}

// Agents returns the IDs of all agents with stored results, sorted.
func (s *MemoryResultsStore) Agents(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.agents))
	for id := range s.agents {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
