package memory

import (
	"context"
	"sync"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// Ensure SyncStateStore implements the interface.
var _ driven.SyncStateStore = (*SyncStateStore)(nil)

// SyncStateStore is an in-memory implementation of driven.SyncStateStore.
type SyncStateStore struct {
	mu     sync.RWMutex
	stamps domain.SyncTimestamps
}

// NewSyncStateStore creates a new in-memory sync state store.
func NewSyncStateStore() *SyncStateStore {
	return &SyncStateStore{}
}

// Get retrieves the stored timestamps.
func (s *SyncStateStore) Get(_ context.Context) (domain.SyncTimestamps, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stamps, nil
}

// Save stores or updates the timestamps.
func (s *SyncStateStore) Save(_ context.Context, stamps domain.SyncTimestamps) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamps = stamps
	return nil
}
