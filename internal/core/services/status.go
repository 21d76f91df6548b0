package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

// StatusService derives and caches the sync state shown to the agent.
// The first-run flag is computed once and only re-derived on explicit
// refresh, so the first-run gate cannot re-appear mid-session.
type StatusService struct {
	syncStore driven.SyncStateStore
	refStore  driven.ReferenceStore

	mu            sync.Mutex
	firstRun      bool
	firstRunKnown bool

	// busy reports whether a cycle is running; bound after the
	// orchestrator is constructed.
	busy func() bool
}

// NewStatusService creates a status service.
func NewStatusService(syncStore driven.SyncStateStore, refStore driven.ReferenceStore) *StatusService {
	return &StatusService{
		syncStore: syncStore,
		refStore:  refStore,
	}
}

// BindBusy wires the orchestrator's busy probe. Must be called before
// SyncState is served; until then Syncing reads false.
func (s *StatusService) BindBusy(busy func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = busy
}

// SyncState returns the current sync state.
func (s *StatusService) SyncState(ctx context.Context) (domain.SyncState, error) {
	firstRun, err := s.firstRunFlag(ctx)
	if err != nil {
		return domain.SyncState{}, err
	}

	stamps, err := s.syncStore.Get(ctx)
	if err != nil {
		return domain.SyncState{}, fmt.Errorf("get sync timestamps: %w", err)
	}

	s.mu.Lock()
	busy := s.busy
	s.mu.Unlock()

	state := domain.SyncState{
		FirstRun:         firstRun,
		PartnersSyncedAt: stamps.Partners,
		ProductsSyncedAt: stamps.Products,
	}
	if busy != nil {
		state.Syncing = busy()
	}
	return state, nil
}

// RefreshFirstRun re-derives the first-run flag from the local
// reference data and returns the new value.
func (s *StatusService) RefreshFirstRun(ctx context.Context) (bool, error) {
	has, err := s.refStore.HasReferenceData(ctx)
	if err != nil {
		return false, fmt.Errorf("check reference data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.firstRun = !has
	s.firstRunKnown = true
	return s.firstRun, nil
}

// ClearFirstRun marks the first run as completed. Called by the
// orchestrator after the first successful reference-data sync.
func (s *StatusService) ClearFirstRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.firstRun = false
	s.firstRunKnown = true
}

// firstRunFlag computes the flag on first use and caches it.
func (s *StatusService) firstRunFlag(ctx context.Context) (bool, error) {
	s.mu.Lock()
	known, cached := s.firstRunKnown, s.firstRun
	s.mu.Unlock()
	if known {
		return cached, nil
	}
	return s.RefreshFirstRun(ctx)
}
