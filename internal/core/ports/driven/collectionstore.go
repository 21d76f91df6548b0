package driven

import (
	"context"
	"time"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

// CollectionStore persists payment receipt lines. Lines recorded from
// one payment share a group ID and change status as a group.
type CollectionStore interface {
	// SaveGroup stores all lines of one payment atomically.
	SaveGroup(ctx context.Context, lines []domain.Collection) error

	// Group returns the lines sharing a group ID.
	Group(ctx context.Context, groupID string) ([]domain.Collection, error)

	// List returns collections in the given statuses, oldest first.
	// With no statuses, all collections are returned.
	List(ctx context.Context, statuses ...domain.DocumentStatus) ([]domain.Collection, error)

	// GroupIDs returns the distinct group IDs of collections in the
	// given statuses, oldest first.
	GroupIDs(ctx context.Context, statuses ...domain.DocumentStatus) ([]string, error)

	// Count returns the number of collections in the given statuses.
	Count(ctx context.Context, statuses ...domain.DocumentStatus) (int, error)

	// HasInFlight reports whether a pending or sending line already
	// exists for the balance key.
	HasInFlight(ctx context.Context, key domain.BalanceKey) (bool, error)

	// CollectedByKey returns, per balance key, the total amount of the
	// partner's lines that are pending, sending or synced.
	CollectedByKey(ctx context.Context, partnerID string) (map[domain.BalanceKey]domain.Money, error)

	// BeginSending atomically moves a group to sending. It reports
	// false without error when the group is already sending or synced,
	// so concurrent submitters cannot double-send.
	BeginSending(ctx context.Context, groupID string) (bool, error)

	// MarkGroupSynced records acceptance of the whole group.
	MarkGroupSynced(ctx context.Context, groupID string, at time.Time) error

	// MarkGroupFailed records rejection of the whole group.
	MarkGroupFailed(ctx context.Context, groupID, message string) error

	// MarkGroupPending returns a group to pending after a transport
	// failure, keeping the note for context.
	MarkGroupPending(ctx context.Context, groupID, message string) error

	// Delete removes a single line.
	Delete(ctx context.Context, id string) error
}
