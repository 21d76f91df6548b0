package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// Ensure CollectionStore implements the interface.
var _ driven.CollectionStore = (*CollectionStore)(nil)

// CollectionStore is an in-memory implementation of driven.CollectionStore.
type CollectionStore struct {
	mu    sync.RWMutex
	lines []domain.Collection
}

// NewCollectionStore creates a new in-memory collection store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{}
}

// SaveGroup stores all lines of one payment atomically.
func (s *CollectionStore) SaveGroup(_ context.Context, lines []domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, lines...)
	return nil
}

// Group returns the lines sharing a group ID.
func (s *CollectionStore) Group(_ context.Context, groupID string) ([]domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Collection
	for _, line := range s.lines {
		if line.GroupID == groupID {
			result = append(result, line)
		}
	}
	if len(result) == 0 {
		return nil, domain.ErrNotFound
	}
	return result, nil
}

// List returns collections in the given statuses, oldest first.
func (s *CollectionStore) List(_ context.Context, statuses ...domain.DocumentStatus) ([]domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Collection
	for _, line := range s.lines {
		if matchesStatus(line.Status, statuses) {
			result = append(result, line)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// GroupIDs returns the distinct group IDs of matching collections,
// oldest first.
func (s *CollectionStore) GroupIDs(_ context.Context, statuses ...domain.DocumentStatus) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := append([]domain.Collection(nil), s.lines...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	seen := make(map[string]bool)
	var result []string
	for _, line := range ordered {
		if matchesStatus(line.Status, statuses) && !seen[line.GroupID] {
			seen[line.GroupID] = true
			result = append(result, line.GroupID)
		}
	}
	return result, nil
}

// Count returns the number of matching collections.
func (s *CollectionStore) Count(_ context.Context, statuses ...domain.DocumentStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, line := range s.lines {
		if matchesStatus(line.Status, statuses) {
			count++
		}
	}
	return count, nil
}

// HasInFlight reports whether a pending or sending line exists for the
// balance key.
func (s *CollectionStore) HasInFlight(_ context.Context, key domain.BalanceKey) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key = key.Normalised()
	for i := range s.lines {
		line := &s.lines[i]
		if line.Status != domain.StatusPending && line.Status != domain.StatusSending {
			continue
		}
		if line.BalanceKey() == key {
			return true, nil
		}
	}
	return false, nil
}

// CollectedByKey sums the partner's unsettled and settled local lines
// per balance key.
func (s *CollectionStore) CollectedByKey(_ context.Context, partnerID string) (map[domain.BalanceKey]domain.Money, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[domain.BalanceKey]domain.Money)
	for i := range s.lines {
		line := &s.lines[i]
		if line.PartnerID != partnerID {
			continue
		}
		switch line.Status {
		case domain.StatusPending, domain.StatusSending, domain.StatusSynced:
			result[line.BalanceKey()] += line.Amount
		}
	}
	return result, nil
}

// BeginSending atomically moves a group to sending. Reports false when
// the group is unknown, already sending or already synced.
func (s *CollectionStore) BeginSending(_ context.Context, groupID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for i := range s.lines {
		if s.lines[i].GroupID != groupID {
			continue
		}
		if s.lines[i].Status == domain.StatusSending || s.lines[i].Status == domain.StatusSynced {
			return false, nil
		}
		found = true
	}
	if !found {
		return false, nil
	}

	for i := range s.lines {
		if s.lines[i].GroupID == groupID {
			s.lines[i].Status = domain.StatusSending
			s.lines[i].ErrorMessage = ""
		}
	}
	return true, nil
}

// MarkGroupSynced records acceptance of the whole group.
func (s *CollectionStore) MarkGroupSynced(_ context.Context, groupID string, at time.Time) error {
	return s.markGroup(groupID, domain.StatusSynced, "", &at)
}

// MarkGroupFailed records rejection of the whole group.
func (s *CollectionStore) MarkGroupFailed(_ context.Context, groupID, message string) error {
	return s.markGroup(groupID, domain.StatusFailed, message, nil)
}

// MarkGroupPending returns a group to pending after a transport failure.
func (s *CollectionStore) MarkGroupPending(_ context.Context, groupID, message string) error {
	return s.markGroup(groupID, domain.StatusPending, message, nil)
}

func (s *CollectionStore) markGroup(groupID string, status domain.DocumentStatus, message string, at *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := false
	for i := range s.lines {
		if s.lines[i].GroupID == groupID {
			s.lines[i].Status = status
			s.lines[i].ErrorMessage = message
			s.lines[i].SyncedAt = at
			found = true
		}
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a single line.
func (s *CollectionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
