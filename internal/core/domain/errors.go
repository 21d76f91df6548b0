package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOffline indicates the backend is not reachable.
	// Manual sync is rejected with this error before any stage runs.
	ErrOffline = errors.New("backend not reachable")

	// ErrSyncInProgress indicates a sync cycle is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrInvalidTransition indicates a document status change that the
	// lifecycle does not permit.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNumberRangeExhausted indicates the configured document number
	// range has no numbers left.
	ErrNumberRangeExhausted = errors.New("number range exhausted")

	// ErrCollectionInFlight indicates a pending or sending collection
	// already exists for the same outstanding balance.
	ErrCollectionInFlight = errors.New("collection already in flight for this balance")

	// ErrSettingsIncomplete indicates required agent settings are missing.
	ErrSettingsIncomplete = errors.New("agent settings incomplete")
)
