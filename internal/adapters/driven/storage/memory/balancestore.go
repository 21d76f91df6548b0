package memory

import (
	"context"
	"sync"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// Ensure BalanceStore implements the interface.
var _ driven.BalanceStore = (*BalanceStore)(nil)

// BalanceStore is an in-memory implementation of driven.BalanceStore.
type BalanceStore struct {
	mu       sync.RWMutex
	balances []domain.OutstandingBalance
}

// NewBalanceStore creates a new in-memory balance store.
func NewBalanceStore() *BalanceStore {
	return &BalanceStore{}
}

// ReplaceAll swaps the stored snapshot for the given one.
func (s *BalanceStore) ReplaceAll(_ context.Context, balances []domain.OutstandingBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = append([]domain.OutstandingBalance(nil), balances...)
	return nil
}

// List returns balances, optionally filtered by partner.
func (s *BalanceStore) List(_ context.Context, partnerID string) ([]domain.OutstandingBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.OutstandingBalance
	for _, balance := range s.balances {
		if partnerID == "" || balance.Key.PartnerID == partnerID {
			result = append(result, balance)
		}
	}
	return result, nil
}
