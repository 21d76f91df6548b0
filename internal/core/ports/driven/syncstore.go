package driven

import (
	"context"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

// SyncStateStore persists the last-known sync timestamps.
type SyncStateStore interface {
	// Get retrieves the stored timestamps. Missing entries are nil.
	Get(ctx context.Context) (domain.SyncTimestamps, error)

	// Save stores or updates the timestamps.
	Save(ctx context.Context, stamps domain.SyncTimestamps) error
}
