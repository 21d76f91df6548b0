package driving

import (
	"context"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

// CreateCollectionGroupRequest records one payment split across the
// partner's outstanding balances.
type CreateCollectionGroupRequest struct {
	PartnerID   string
	PartnerName string
	Lines       []domain.AllocationLine
}

// CollectionService manages payment receipts and the balance view they
// are allocated against.
type CollectionService interface {
	// Balances returns the partner's outstanding balances with the
	// effective remainder: the backend's rest minus local in-flight
	// collections, floored at zero. Fully covered balances are
	// filtered out.
	Balances(ctx context.Context, partnerID string) ([]domain.OutstandingBalance, error)

	// RecordGroup validates the allocation against the effective
	// balances and records the lines as one pending group. Returns
	// the group ID. A *domain.AllocationError identifies every
	// invalid line; nothing is recorded unless all lines are valid.
	RecordGroup(ctx context.Context, req CreateCollectionGroupRequest) (string, error)

	// List returns collections, optionally filtered by status.
	List(ctx context.Context, statuses ...domain.DocumentStatus) ([]domain.Collection, error)

	// Delete removes a collection line that has not been accepted
	// remotely.
	Delete(ctx context.Context, id string) error
}
