package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

func TestSettingsStore_NextInvoiceNumber(t *testing.T) {
	store := NewSettingsStore()
	ctx := context.Background()

	// Without a range nothing can be allocated.
	_, err := store.NextInvoiceNumber(ctx)
	require.ErrorIs(t, err, domain.ErrSettingsIncomplete)

	require.NoError(t, store.Save(ctx, domain.AgentSettings{
		InvoiceNumberStart: 10,
		InvoiceNumberEnd:   11,
	}))

	first, err := store.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	second, err := store.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, first)
	assert.Equal(t, 11, second)

	_, err = store.NextInvoiceNumber(ctx)
	require.ErrorIs(t, err, domain.ErrNumberRangeExhausted)
}

func TestSettingsStore_NextReceiptNumber(t *testing.T) {
	store := NewSettingsStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.AgentSettings{
		ReceiptNumberCurrent: 500,
		ReceiptNumberEnd:     501,
	}))

	first, err := store.NextReceiptNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "500", first)

	second, err := store.NextReceiptNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "501", second)

	_, err = store.NextReceiptNumber(ctx)
	require.ErrorIs(t, err, domain.ErrNumberRangeExhausted)
}

func TestSettingsStore_ReceiptNumberTimestampFallback(t *testing.T) {
	store := NewSettingsStore()
	at := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return at }

	number, err := store.NextReceiptNumber(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "1787227200", number)
}
