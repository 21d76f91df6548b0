package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

func seedGroup(t *testing.T, store *CollectionStore, groupID string, status domain.DocumentStatus, amounts ...domain.Money) {
	t.Helper()
	lines := make([]domain.Collection, 0, len(amounts))
	for i, amount := range amounts {
		lines = append(lines, domain.Collection{
			ID:            groupID + "-" + string(rune('a'+i)),
			GroupID:       groupID,
			PartnerID:     "p1",
			InvoiceSeries: "FLD",
			InvoiceNumber: docNum(i),
			DocumentCode:  "INV",
			DocumentDate:  "2026-01-10",
			Amount:        amount,
			Status:        status,
			CreatedAt:     time.Now().Add(time.Duration(i) * time.Millisecond),
		})
	}
	require.NoError(t, store.SaveGroup(context.Background(), lines))
}

func docNum(i int) string {
	return string(rune('0' + i))
}

func TestCollectionStore_BeginSendingGate(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()
	seedGroup(t, store, "g1", domain.StatusPending, 100, 200)

	ok, err := store.BeginSending(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, ok)

	// A second submitter is turned away.
	ok, err = store.BeginSending(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Synced groups stay closed.
	require.NoError(t, store.MarkGroupSynced(ctx, "g1", time.Now()))
	ok, err = store.BeginSending(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Unknown groups are not eligible.
	ok, err = store.BeginSending(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCollectionStore_FailedGroupCanRetry(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()
	seedGroup(t, store, "g1", domain.StatusPending, 100)

	ok, err := store.BeginSending(ctx, "g1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, store.MarkGroupFailed(ctx, "g1", "rejected"))

	ok, err = store.BeginSending(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCollectionStore_CollectedByKeyExcludesFailed(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()
	seedGroup(t, store, "g1", domain.StatusPending, 1000)
	seedGroup(t, store, "g2", domain.StatusSynced, 2000)
	seedGroup(t, store, "g3", domain.StatusFailed, 4000)

	collected, err := store.CollectedByKey(ctx, "p1")
	require.NoError(t, err)

	key := domain.BalanceKey{
		PartnerID: "p1", Series: "FLD", Number: "0",
		DocumentCode: "INV", Date: "2026-01-10",
	}
	assert.Equal(t, domain.Money(3000), collected[key])
}

func TestCollectionStore_HasInFlight(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()
	seedGroup(t, store, "g1", domain.StatusPending, 1000)

	key := domain.BalanceKey{
		PartnerID: "p1", Series: " FLD ", Number: "0",
		DocumentCode: "INV", Date: "2026-01-10",
	}
	inFlight, err := store.HasInFlight(ctx, key)
	require.NoError(t, err)
	assert.True(t, inFlight)

	require.NoError(t, store.MarkGroupSynced(ctx, "g1", time.Now()))
	inFlight, err = store.HasInFlight(ctx, key)
	require.NoError(t, err)
	assert.False(t, inFlight)
}

func TestCollectionStore_GroupIDsOldestFirst(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, store.SaveGroup(ctx, []domain.Collection{
		{ID: "b", GroupID: "g2", Status: domain.StatusPending, CreatedAt: base.Add(time.Second)},
	}))
	require.NoError(t, store.SaveGroup(ctx, []domain.Collection{
		{ID: "a", GroupID: "g1", Status: domain.StatusFailed, CreatedAt: base},
	}))
	require.NoError(t, store.SaveGroup(ctx, []domain.Collection{
		{ID: "c", GroupID: "g3", Status: domain.StatusSynced, CreatedAt: base.Add(2 * time.Second)},
	}))

	ids, err := store.GroupIDs(ctx, domain.StatusPending, domain.StatusFailed)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2"}, ids)
}

func TestCollectionStore_CountAndDelete(t *testing.T) {
	store := NewCollectionStore()
	ctx := context.Background()
	seedGroup(t, store, "g1", domain.StatusPending, 100, 200)
	seedGroup(t, store, "g2", domain.StatusSynced, 300)

	count, err := store.Count(ctx, domain.StatusPending, domain.StatusFailed)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, store.Delete(ctx, "g1-a"))
	count, err = store.Count(ctx, domain.StatusPending, domain.StatusFailed)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	err = store.Delete(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
