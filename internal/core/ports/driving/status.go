package driving

import (
	"context"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

// StatusService exposes the sync state read-only.
type StatusService interface {
	// SyncState returns the current sync state, including whether a
	// cycle is running right now.
	SyncState(ctx context.Context) (domain.SyncState, error)

	// RefreshFirstRun re-derives the first-run flag from the local
	// reference data. Used after a manual data wipe.
	RefreshFirstRun(ctx context.Context) (bool, error)
}
