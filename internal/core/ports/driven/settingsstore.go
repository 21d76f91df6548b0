package driven

import (
	"context"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

// SettingsStore persists the agent settings and hands out document
// numbers from the configured ranges.
type SettingsStore interface {
	// Get retrieves the settings. Returns zero-value settings when
	// none have been saved yet.
	Get(ctx context.Context) (domain.AgentSettings, error)

	// Save stores the settings.
	Save(ctx context.Context, settings domain.AgentSettings) error

	// NextInvoiceNumber atomically allocates the next invoice number
	// from the range. Returns ErrNumberRangeExhausted when the range
	// is used up and ErrSettingsIncomplete when no range is set.
	NextInvoiceNumber(ctx context.Context) (int, error)

	// NextReceiptNumber atomically allocates the next receipt number.
	// When no range is configured it falls back to a timestamp, so a
	// receipt can always be issued. Returns ErrNumberRangeExhausted
	// when a configured range is used up.
	NextReceiptNumber(ctx context.Context) (string, error)
}
