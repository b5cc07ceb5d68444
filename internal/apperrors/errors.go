package apperrors

import "errors"

// Domain entity errors represent missing entities in the results store.
var (
	// ErrAgentNotFound indicates that no analytics have been stored for the agent.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrSnapshotNotFound indicates that a stored snapshot with the given ID does not exist.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Validation errors represent malformed input that must abort a calculation.
// Every other degenerate input degrades to a documented sentinel value instead.
var (
	// ErrValidation is matched by every *validation.Error.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidPeriod indicates an unknown reporting period.
	ErrInvalidPeriod = errors.New("invalid reporting period")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	ErrInvalidAgentID = errors.New("agent ID is required")
)

// Operation failure errors represent system-level failures when storing or loading results.
var (
	ErrFailedToStoreSnapshot    = errors.New("failed to store snapshot")
	ErrFailedToRetrieveSnapshot = errors.New("failed to retrieve snapshot")
	ErrFailedToRetrieveAgents   = errors.New("failed to retrieve agents")
	ErrFailedToGenerateReport   = errors.New("failed to generate report")
)
