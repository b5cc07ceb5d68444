package service

import (
	"database/sql"
	"fmt"
	"maps"
	"strconv"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/database"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/model"
	"github.com/ndewijer/Trading-Analytics-Engine/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db       *sql.DB
	store    string
	features map[string]bool
}

// NewSystemService creates a new SystemService.
// store names the results store backend; features lists optional capabilities
// switched on by configuration.
func NewSystemService(db *sql.DB, store string, features map[string]bool) *SystemService {
	if features == nil {
		features = map[string]bool{}
	}
	return &SystemService{
		db:       db,
		store:    store,
		features: features,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion reports the application version, the applied schema version and
// whether embedded migrations are still pending.
func (s *SystemService) CheckVersion() (model.VersionInfo, error) {
	current, err := database.SchemaVersion(s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}
	latest, err := database.LatestVersion()
	if err != nil {
		return model.VersionInfo{}, err
	}

	info := model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  strconv.FormatInt(current, 10),
		Store:      s.store,
		Features:   maps.Clone(s.features),
	}
	if current < latest {
		msg := fmt.Sprintf("database schema is at version %d, latest is %d", current, latest)
		info.MigrationNeeded = true
		info.MigrationMessage = &msg
	}
	return info, nil
}
