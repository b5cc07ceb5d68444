package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/config"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/repository"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/service"
)

// NewTestAnalyticsService creates an AnalyticsService over a fresh in-memory results store.
func NewTestAnalyticsService(t *testing.T, opts ...service.AnalyticsOption) (*service.AnalyticsService, *repository.MemoryResultsStore) {
	t.Helper()

	store := repository.NewMemoryResultsStore()
	return service.NewAnalyticsService(store, opts...), store
}

// NewTestSQLiteAnalyticsService creates an AnalyticsService backed by the
// analytics_snapshot table of db.
func NewTestSQLiteAnalyticsService(t *testing.T, db *sql.DB, opts ...service.AnalyticsOption) *service.AnalyticsService {
	t.Helper()

	return service.NewAnalyticsService(repository.NewSQLiteResultsStore(db), opts...)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, config.StoreSQLite, map[string]bool{"snapshot_history": true})
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeAgentID generates a unique trading agent ID for testing.
//
// Example usage:
//
//	agent := testutil.MakeAgentID("momentum")
//	// Returns: "momentum-1A2B3C"
func MakeAgentID(base string) string {
	if base == "" {
		base = "agent"
	}
	return base + "-" + randomAlphanumeric(6)
}

// MakeSymbol generates a stock ticker symbol for testing.
//
// Example usage:
//
//	symbol := testutil.MakeSymbol("AAPL")
//	// Returns: "AAPL1A2B"
func MakeSymbol(base string) string {
	if base == "" {
		base = "TEST"
	}
	return base + randomAlphanumeric(4)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
