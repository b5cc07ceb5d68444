package service_test

import (
	"testing"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/testutil"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/version"
)

// TestSystemService_CheckVersion tests version reporting on a migrated database.
//
// WHY: Operators rely on the version endpoint to confirm a deploy applied its
// schema; a fully migrated database must not report a pending migration.
func TestSystemService_CheckVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSystemService(t, db)

	info, err := svc.CheckVersion()
	if err != nil {
		t.Fatalf("CheckVersion() returned unexpected error: %v", err)
	}

	if info.AppVersion != version.Version {
		t.Errorf("Expected app version %q, got %q", version.Version, info.AppVersion)
	}
	if info.DbVersion != "1" {
		t.Errorf("Expected db version '1', got '%s'", info.DbVersion)
	}
	if info.MigrationNeeded {
		t.Errorf("Expected no pending migration, got message %v", info.MigrationMessage)
	}
	if !info.Features["snapshot_history"] {
		t.Error("Expected snapshot_history feature to be reported")
	}
}

func TestSystemService_CheckHealth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSystemService(t, db)

	if err := svc.CheckHealth(); err != nil {
		t.Errorf("Expected healthy database, got %v", err)
	}

	db.Close()

	if err := svc.CheckHealth(); err == nil {
		t.Error("Expected health check to fail on a closed database")
	}
}
