package driven

import (
	"context"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

// BalanceStore holds the outstanding balances from the last sync.
// The balance feed is a convenience snapshot: every sync replaces it
// wholesale, the backend remains the source of truth.
type BalanceStore interface {
	// ReplaceAll swaps the stored snapshot for the given one.
	ReplaceAll(ctx context.Context, balances []domain.OutstandingBalance) error

	// List returns balances, optionally filtered by partner.
	// An empty partnerID returns all balances.
	List(ctx context.Context, partnerID string) ([]domain.OutstandingBalance, error)
}
