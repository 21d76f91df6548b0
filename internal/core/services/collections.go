package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driving"
	"github.com/fieldbill/fieldbill-cli/internal/events"
)

// Ensure Collections implements the interface.
var _ driving.CollectionService = (*Collections)(nil)

// Collections manages payment receipts and the balance view they are
// allocated against. Validation always runs against the effective
// remainders so a payment can never double-cover a balance that a
// queued collection already pays.
type Collections struct {
	store         driven.CollectionStore
	balanceStore  driven.BalanceStore
	settingsStore driven.SettingsStore
	bus           *events.Bus

	now func() time.Time
}

// NewCollections creates the collection service.
func NewCollections(
	store driven.CollectionStore,
	balanceStore driven.BalanceStore,
	settingsStore driven.SettingsStore,
	bus *events.Bus,
) *Collections {
	return &Collections{
		store:         store,
		balanceStore:  balanceStore,
		settingsStore: settingsStore,
		bus:           bus,
		now:           time.Now,
	}
}

// Balances returns the partner's outstanding balances with effective
// remainders. Balances fully covered by local collections are dropped:
// the agent must not collect against them again while the queue drains.
func (s *Collections) Balances(ctx context.Context, partnerID string) ([]domain.OutstandingBalance, error) {
	balances, err := s.balanceStore.List(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("list balances for partner %s: %w", partnerID, err)
	}

	collected, err := s.store.CollectedByKey(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("sum local collections for partner %s: %w", partnerID, err)
	}

	effective := make([]domain.OutstandingBalance, 0, len(balances))
	for _, balance := range balances {
		balance.Rest = balance.EffectiveRest(collected[balance.Key.Normalised()])
		if balance.Rest.IsPositive() {
			effective = append(effective, balance)
		}
	}
	return effective, nil
}

// RecordGroup validates the allocation and records the lines as one
// pending group, assigning the receipt series and number. Nothing is
// recorded unless every line is valid.
func (s *Collections) RecordGroup(ctx context.Context, req driving.CreateCollectionGroupRequest) (string, error) {
	if len(req.Lines) == 0 {
		return "", fmt.Errorf("allocation needs at least one line: %w", domain.ErrInvalidInput)
	}

	balances, err := s.Balances(ctx, req.PartnerID)
	if err != nil {
		return "", err
	}

	group, err := PlanAllocations(balances, req.Lines)
	if err != nil {
		return "", err
	}

	// Reject the whole payment if any target balance already has an
	// unsettled collection in flight.
	for _, line := range group.Lines {
		inFlight, err := s.store.HasInFlight(ctx, line.Key)
		if err != nil {
			return "", fmt.Errorf("check in-flight collections: %w", err)
		}
		if inFlight {
			return "", fmt.Errorf("balance %s: %w", line.Key, domain.ErrCollectionInFlight)
		}
	}

	settings, err := s.settingsStore.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("get settings: %w", err)
	}
	series := settings.ReceiptSeries
	if series == "" {
		series = domain.DefaultReceiptSeries
	}
	number, err := s.settingsStore.NextReceiptNumber(ctx)
	if err != nil {
		return "", fmt.Errorf("allocate receipt number: %w", err)
	}

	group.ID = uuid.NewString()
	group.PartnerID = req.PartnerID
	group.PartnerName = req.PartnerName
	group.ReceiptSeries = series
	group.ReceiptNumber = number

	now := s.now()
	lines := make([]domain.Collection, 0, len(group.Lines))
	for _, line := range group.Lines {
		lines = append(lines, domain.Collection{
			ID:            uuid.NewString(),
			GroupID:       group.ID,
			ReceiptSeries: group.ReceiptSeries,
			ReceiptNumber: group.ReceiptNumber,
			PartnerID:     group.PartnerID,
			PartnerName:   group.PartnerName,
			InvoiceSeries: line.Key.Series,
			InvoiceNumber: line.Key.Number,
			DocumentCode:  line.Key.DocumentCode,
			DocumentDate:  line.Key.Date,
			Amount:        line.Amount,
			CollectedAt:   now,
			Status:        domain.StatusPending,
			CreatedAt:     now,
		})
	}

	if err := s.store.SaveGroup(ctx, lines); err != nil {
		return "", fmt.Errorf("save collection group: %w", err)
	}

	s.bus.Publish(events.TopicCollectionsUpdated)
	return group.ID, nil
}

// List returns collections, optionally filtered by status.
func (s *Collections) List(ctx context.Context, statuses ...domain.DocumentStatus) ([]domain.Collection, error) {
	return s.store.List(ctx, statuses...)
}

// Delete removes a collection line the backend has not accepted.
func (s *Collections) Delete(ctx context.Context, id string) error {
	lines, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	for i := range lines {
		if lines[i].ID != id {
			continue
		}
		if lines[i].Status.Terminal() {
			return fmt.Errorf("delete accepted collection: %w", domain.ErrInvalidTransition)
		}
		if err := s.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete collection %s: %w", id, err)
		}
		s.bus.Publish(events.TopicCollectionsUpdated)
		return nil
	}
	return fmt.Errorf("collection %s: %w", id, domain.ErrNotFound)
}
