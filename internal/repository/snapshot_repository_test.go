package repository_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/apperrors"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/repository"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/testutil"
)

func TestSnapshotRepository_InsertAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSnapshotRepository(db)
	ctx := context.Background()

	stored, err := repo.InsertSnapshot(ctx, "alpha", model.KindMetrics, model.PerformanceMetrics{TotalTrades: 4})
	require.NoError(t, err)
	testutil.AssertRowCount(t, db, testutil.SnapshotTable, 1)

	got, err := repo.GetSnapshot(ctx, stored.ID)
	require.NoError(t, err)

	assert.Equal(t, stored.ID, got.ID)
	assert.Equal(t, "alpha", got.AgentID)
	assert.Equal(t, model.KindMetrics, got.Kind)
	assert.JSONEq(t, string(stored.Payload), string(got.Payload))
	assert.True(t, stored.CreatedAt.Equal(got.CreatedAt), "created_at should round-trip")
}

func TestSnapshotRepository_GetSnapshotNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSnapshotRepository(db)

	_, err := repo.GetSnapshot(context.Background(), testutil.MakeID())
	if !errors.Is(err, apperrors.ErrSnapshotNotFound) {
		t.Errorf("Expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSnapshotRepository_WithTx(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSnapshotRepository(db)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	_, err = repo.WithTx(tx).InsertSnapshot(ctx, "alpha", model.KindRisk, model.RiskMetrics{})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	testutil.AssertRowCount(t, db, testutil.SnapshotTable, 0)
}

func TestSnapshotRepository_LatestPerKind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewSnapshotRepository(db)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := repo.InsertSnapshot(ctx, "alpha", model.KindMetrics, model.PerformanceMetrics{TotalTrades: i})
		require.NoError(t, err)
	}
	risk, err := repo.InsertSnapshot(ctx, "alpha", model.KindRisk, model.RiskMetrics{Confidence: 0.99})
	require.NoError(t, err)
	_, err = repo.InsertSnapshot(ctx, "beta", model.KindMetrics, model.PerformanceMetrics{})
	require.NoError(t, err)

	latest, err := repo.GetLatestSnapshots(ctx, "alpha")
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, model.KindMetrics, latest[0].Kind)
	assert.Contains(t, string(latest[0].Payload), `"totalTrades":3`)
	assert.Equal(t, risk.ID, latest[1].ID)

	all, err := repo.GetSnapshots(ctx, "alpha", model.KindMetrics)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	ids, err := repo.GetAgentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, ids)
}

func TestSQLiteResultsStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.NewSQLiteResultsStore(db)
	ctx := context.Background()

	t.Run("unknown agent", func(t *testing.T) {
		_, err := store.Latest(ctx, "ghost")
		assert.ErrorIs(t, err, apperrors.ErrAgentNotFound)

		_, err = store.MetricsHistory(ctx, "ghost")
		assert.ErrorIs(t, err, apperrors.ErrAgentNotFound)
	})

	t.Run("assembles latest snapshot", func(t *testing.T) {
		testutil.CleanDatabase(t, db)

		require.NoError(t, store.PutMetrics(ctx, "alpha", model.PerformanceMetrics{
			TotalTrades:  2,
			ProfitFactor: model.Ratio(math.Inf(1)),
		}))
		require.NoError(t, store.PutRisk(ctx, "alpha", model.RiskMetrics{
			Confidence:        0.95,
			CorrelationMatrix: map[string]map[string]float64{"AAPL": {"AAPL": 1}},
		}))
		require.NoError(t, store.PutAttribution(ctx, "alpha", model.PerformanceAttribution{
			StrategyContribution: map[string]float64{"momentum": 0.02},
			TotalAttribution:     0.02,
		}))
		require.NoError(t, store.PutBenchmark(ctx, "alpha", model.BenchmarkComparison{Alpha: 0.003, Beta: 1.2}))

		snapshot, err := store.Latest(ctx, "alpha")
		require.NoError(t, err)

		require.NotNil(t, snapshot.Metrics)
		assert.True(t, math.IsInf(snapshot.Metrics.ProfitFactor.Float64(), 1), "infinite profit factor survives storage")
		require.NotNil(t, snapshot.Risk)
		assert.Equal(t, 1.0, snapshot.Risk.CorrelationMatrix["AAPL"]["AAPL"])
		require.NotNil(t, snapshot.Attribution)
		assert.Equal(t, 0.02, snapshot.Attribution.StrategyContribution["momentum"])
		require.NotNil(t, snapshot.Benchmark)
		assert.Equal(t, 1.2, snapshot.Benchmark.Beta)
		assert.False(t, snapshot.UpdatedAt.IsZero())
	})

	t.Run("history keeps every metrics write", func(t *testing.T) {
		testutil.CleanDatabase(t, db)

		for i := 1; i <= 4; i++ {
			require.NoError(t, store.PutMetrics(ctx, "alpha", model.PerformanceMetrics{TotalTrades: i}))
		}

		history, err := store.MetricsHistory(ctx, "alpha")
		require.NoError(t, err)
		require.Len(t, history, 4)
		assert.Equal(t, 1, history[0].TotalTrades)
		assert.Equal(t, 4, history[3].TotalTrades)
	})

	t.Run("history empty when only risk stored", func(t *testing.T) {
		testutil.CleanDatabase(t, db)

		require.NoError(t, store.PutRisk(ctx, "alpha", model.RiskMetrics{}))

		history, err := store.MetricsHistory(ctx, "alpha")
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("snapshot by id", func(t *testing.T) {
		testutil.CleanDatabase(t, db)

		require.NoError(t, store.PutMetrics(ctx, "alpha", model.PerformanceMetrics{}))
		var id string
		require.NoError(t, db.QueryRow("SELECT id FROM analytics_snapshot").Scan(&id))

		got, err := store.Snapshot(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "alpha", got.AgentID)
	})
}

func TestTimeFormatRoundTrip(t *testing.T) {
	now := testutil.NewTrade().Build().ExitTime

	parsed, err := repository.ParseTime(repository.FormatTime(now))
	require.NoError(t, err)
	assert.True(t, now.Equal(parsed))

	_, err = repository.ParseTime("not a time")
	assert.Error(t, err)
}

// TestSQLiteResultsStore_PutSnapshot checks a snapshot is written as one
// transaction.
//
// WHY: If one part cannot be stored, the parts written before it must not
// become the agent's latest state either.
func TestSQLiteResultsStore_PutSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := repository.NewSQLiteResultsStore(db)
	ctx := context.Background()

	t.Run("writes every part", func(t *testing.T) {
		testutil.CleanDatabase(t, db)

		require.NoError(t, store.PutSnapshot(ctx, "alpha", model.AgentSnapshot{
			Metrics:   &model.PerformanceMetrics{TotalTrades: 3},
			Risk:      &model.RiskMetrics{Confidence: 0.95},
			Benchmark: &model.BenchmarkComparison{Alpha: 0.002},
		}))
		testutil.AssertRowCount(t, db, testutil.SnapshotTable, 3)

		snapshot, err := store.Latest(ctx, "alpha")
		require.NoError(t, err)
		require.NotNil(t, snapshot.Metrics)
		assert.Equal(t, 3, snapshot.Metrics.TotalTrades)
		require.NotNil(t, snapshot.Benchmark)
		assert.Equal(t, 0.002, snapshot.Benchmark.Alpha)
		assert.Nil(t, snapshot.Attribution)
	})

	t.Run("rolls back when a part fails", func(t *testing.T) {
		testutil.CleanDatabase(t, db)

		err := store.PutSnapshot(ctx, "alpha", model.AgentSnapshot{
			Metrics: &model.PerformanceMetrics{TotalTrades: 3},
			Risk:    &model.RiskMetrics{ValueAtRisk: math.NaN()},
		})
		require.Error(t, err)
		testutil.AssertRowCount(t, db, testutil.SnapshotTable, 0)
	})

	t.Run("empty snapshot writes nothing", func(t *testing.T) {
		testutil.CleanDatabase(t, db)

		require.NoError(t, store.PutSnapshot(ctx, "alpha", model.AgentSnapshot{}))
		testutil.AssertRowCount(t, db, testutil.SnapshotTable, 0)
	})
}
