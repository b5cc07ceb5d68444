package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/apperrors"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/repository"
)

func TestMemoryResultsStore_UnknownAgent(t *testing.T) {
	store := repository.NewMemoryResultsStore()
	ctx := context.Background()

	_, err := store.Latest(ctx, "ghost")
	if !errors.Is(err, apperrors.ErrAgentNotFound) {
		t.Errorf("Expected ErrAgentNotFound, got %v", err)
	}

	_, err = store.MetricsHistory(ctx, "ghost")
	if !errors.Is(err, apperrors.ErrAgentNotFound) {
		t.Errorf("Expected ErrAgentNotFound from history, got %v", err)
	}

	agents, err := store.Agents(ctx)
	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestMemoryResultsStore_PutAndLatest(t *testing.T) {
	store := repository.NewMemoryResultsStore()
	ctx := context.Background()

	require.NoError(t, store.PutMetrics(ctx, "alpha", model.PerformanceMetrics{TotalReturn: 0.1, TotalTrades: 3}))
	require.NoError(t, store.PutRisk(ctx, "alpha", model.RiskMetrics{Confidence: 0.95, ValueAtRisk: 0.02}))
	require.NoError(t, store.PutBenchmark(ctx, "alpha", model.BenchmarkComparison{Alpha: 0.001, Beta: 1}))

	snapshot, err := store.Latest(ctx, "alpha")
	require.NoError(t, err)

	assert.Equal(t, "alpha", snapshot.AgentID)
	require.NotNil(t, snapshot.Metrics)
	assert.Equal(t, 0.1, snapshot.Metrics.TotalReturn)
	require.NotNil(t, snapshot.Risk)
	assert.Equal(t, 0.02, snapshot.Risk.ValueAtRisk)
	require.NotNil(t, snapshot.Benchmark)
	assert.Nil(t, snapshot.Attribution, "attribution was never stored")
	assert.False(t, snapshot.UpdatedAt.IsZero())
}

// TestMemoryResultsStore_LastWriteWins checks a later Put replaces the latest
// value while the metrics history keeps every write in order.
func TestMemoryResultsStore_LastWriteWins(t *testing.T) {
	store := repository.NewMemoryResultsStore()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.PutMetrics(ctx, "alpha", model.PerformanceMetrics{TotalTrades: i}))
	}

	snapshot, err := store.Latest(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, 3, snapshot.Metrics.TotalTrades)

	history, err := store.MetricsHistory(ctx, "alpha")
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, m := range history {
		assert.Equal(t, i+1, m.TotalTrades)
	}
}

func TestMemoryResultsStore_HistoryEmptyWithoutMetrics(t *testing.T) {
	store := repository.NewMemoryResultsStore()
	ctx := context.Background()

	require.NoError(t, store.PutRisk(ctx, "alpha", model.RiskMetrics{}))

	history, err := store.MetricsHistory(ctx, "alpha")
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

// TestMemoryResultsStore_ReadsAreCopies checks callers cannot mutate stored state.
//
// WHY: Snapshots hold maps and slices. If Latest handed out the stored maps, a
// caller editing its result would silently rewrite another reader's view.
func TestMemoryResultsStore_ReadsAreCopies(t *testing.T) {
	store := repository.NewMemoryResultsStore()
	ctx := context.Background()

	attribution := model.PerformanceAttribution{
		StrategyContribution: map[string]float64{"momentum": 0.01},
	}
	require.NoError(t, store.PutAttribution(ctx, "alpha", attribution))

	// Mutating the caller's value after Put must not leak into the store.
	attribution.StrategyContribution["momentum"] = 99

	first, err := store.Latest(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, 0.01, first.Attribution.StrategyContribution["momentum"])

	first.Attribution.StrategyContribution["momentum"] = 42

	second, err := store.Latest(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, 0.01, second.Attribution.StrategyContribution["momentum"])
}

func TestMemoryResultsStore_Agents(t *testing.T) {
	store := repository.NewMemoryResultsStore()
	ctx := context.Background()

	for _, id := range []string{"zeta", "alpha", "mu"} {
		require.NoError(t, store.PutMetrics(ctx, id, model.PerformanceMetrics{}))
	}

	agents, err := store.Agents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mu", "zeta"}, agents)
}

func TestMemoryResultsStore_CancelledContext(t *testing.T) {
	store := repository.NewMemoryResultsStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.PutMetrics(ctx, "alpha", model.PerformanceMetrics{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.Latest(ctx, "alpha")
	assert.ErrorIs(t, err, context.Canceled)
}

// TestMemoryResultsStore_ConcurrentWriters runs writers and readers in parallel.
//
// WHY: Agents are analyzed concurrently. Run with -race this catches any
// unsynchronized access; without it, it still checks no write is lost.
func TestMemoryResultsStore_ConcurrentWriters(t *testing.T) {
	store := repository.NewMemoryResultsStore()
	ctx := context.Background()

	const agents, writes = 8, 25
	var wg sync.WaitGroup
	for a := 0; a < agents; a++ {
		agentID := fmt.Sprintf("agent-%d", a)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				if err := store.PutMetrics(ctx, agentID, model.PerformanceMetrics{TotalTrades: i}); err != nil {
					t.Errorf("PutMetrics failed: %v", err)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				//nolint:errcheck // Agent may not exist yet
				store.Latest(ctx, agentID)
			}
		}()
	}
	wg.Wait()

	ids, err := store.Agents(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, agents)
	for _, id := range ids {
		history, err := store.MetricsHistory(ctx, id)
		require.NoError(t, err)
		assert.Len(t, history, writes)
	}
}

// TestMemoryResultsStore_PutSnapshot checks a snapshot write replaces only the
// parts it carries and records its metrics in the history.
func TestMemoryResultsStore_PutSnapshot(t *testing.T) {
	store := repository.NewMemoryResultsStore()
	ctx := context.Background()

	require.NoError(t, store.PutAttribution(ctx, "alpha", model.PerformanceAttribution{TotalAttribution: 0.01}))

	metrics := model.PerformanceMetrics{TotalTrades: 5}
	require.NoError(t, store.PutSnapshot(ctx, "alpha", model.AgentSnapshot{
		Metrics: &metrics,
		Risk:    &model.RiskMetrics{ValueAtRisk: 0.03},
	}))

	snapshot, err := store.Latest(ctx, "alpha")
	require.NoError(t, err)
	require.NotNil(t, snapshot.Metrics)
	assert.Equal(t, 5, snapshot.Metrics.TotalTrades)
	require.NotNil(t, snapshot.Risk)
	assert.Equal(t, 0.03, snapshot.Risk.ValueAtRisk)
	require.NotNil(t, snapshot.Attribution, "parts absent from the write are kept")
	assert.Equal(t, 0.01, snapshot.Attribution.TotalAttribution)
	assert.Nil(t, snapshot.Benchmark)

	metrics.TotalTrades = 99
	again, err := store.Latest(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, 5, again.Metrics.TotalTrades, "store must not alias the caller's value")

	history, err := store.MetricsHistory(ctx, "alpha")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
