package domain

import "time"

// SyncState is the last-known synchronisation state, shown to the
// agent and used to gate the first-run experience.
type SyncState struct {
	// FirstRun is true until the first successful reference-data sync.
	// It is computed once at startup from whether any reference data
	// exists locally and only re-derived on explicit refresh.
	FirstRun bool

	// PartnersSyncedAt is when partners were last synced, if ever.
	PartnersSyncedAt *time.Time

	// ProductsSyncedAt is when products were last synced, if ever.
	ProductsSyncedAt *time.Time

	// Syncing is true for the duration of one orchestrator cycle.
	// It drives UI affordances only; it is not the concurrency guard.
	Syncing bool
}

// SyncTimestamps is the persisted part of SyncState.
type SyncTimestamps struct {
	Partners *time.Time
	Products *time.Time
}
