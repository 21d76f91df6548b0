package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driving"
	"github.com/fieldbill/fieldbill-cli/internal/events"
	"github.com/fieldbill/fieldbill-cli/internal/logger"
)

// Stage names reported in CycleResult.PartialFailures.
const (
	stageCollectionCount = "collection-count"
	stageInvoiceSubmit   = "invoice-submit"
	stageBalanceSync     = "balance-sync"
	stageCollectionSync  = "collection-sync"
	stageReferenceSync   = "reference-sync"
)

// Ensure AutoSend implements the interface.
var _ driving.AutoSender = (*AutoSend)(nil)

// AutoSend coordinates the staged reconciliation pipeline: submit
// queued invoices, refresh balances, push queued collections, report
// the diff. Stages run strictly in order and are isolated from each
// other's failures; the backend is authoritative and resubmission of
// an accepted document is safe, so nothing is ever rolled back.
type AutoSend struct {
	invoiceStore    driven.InvoiceStore
	collectionStore driven.CollectionStore
	balanceStore    driven.BalanceStore
	referenceStore  driven.ReferenceStore
	syncStore       driven.SyncStateStore
	settingsStore   driven.SettingsStore
	gateway         driven.BackendGateway
	status          *StatusService
	bus             *events.Bus

	// online reports the connectivity monitor's current state.
	online func() bool

	// guard is the mutual-exclusion lock for cycles. Try-locked so a
	// trigger during a running cycle is dropped, never queued.
	guard sync.Mutex

	// busyMu protects busy, the UI-facing mirror of the guard.
	busyMu sync.Mutex
	busy   bool

	now func() time.Time
}

// NewAutoSend creates the orchestrator. The online func is usually the
// connectivity monitor's Online method.
func NewAutoSend(
	invoiceStore driven.InvoiceStore,
	collectionStore driven.CollectionStore,
	balanceStore driven.BalanceStore,
	referenceStore driven.ReferenceStore,
	syncStore driven.SyncStateStore,
	settingsStore driven.SettingsStore,
	gateway driven.BackendGateway,
	status *StatusService,
	bus *events.Bus,
	online func() bool,
) *AutoSend {
	return &AutoSend{
		invoiceStore:    invoiceStore,
		collectionStore: collectionStore,
		balanceStore:    balanceStore,
		referenceStore:  referenceStore,
		syncStore:       syncStore,
		settingsStore:   settingsStore,
		gateway:         gateway,
		status:          status,
		bus:             bus,
		online:          online,
		now:             time.Now,
	}
}

// Busy reports whether a cycle is currently running.
func (s *AutoSend) Busy() bool {
	s.busyMu.Lock()
	defer s.busyMu.Unlock()
	return s.busy
}

func (s *AutoSend) setBusy(v bool) {
	s.busyMu.Lock()
	s.busy = v
	s.busyMu.Unlock()
}

// RunCycle runs one auto-send cycle. Offline or guard contention is a
// silent no-op: Ran is false, no state changes, no signals.
func (s *AutoSend) RunCycle(ctx context.Context) driving.CycleResult {
	if !s.online() {
		logger.Debug("auto-send skipped: offline")
		return driving.CycleResult{}
	}
	if !s.guard.TryLock() {
		logger.Debug("auto-send skipped: cycle already running")
		return driving.CycleResult{}
	}
	defer s.guard.Unlock()

	return s.runLocked(ctx, false)
}

// SyncNow is the manual trigger. It refreshes the reference data
// before submitting. Unlike the automatic path, contention and
// offline are surfaced as errors so the caller can tell the user.
func (s *AutoSend) SyncNow(ctx context.Context) (driving.CycleResult, error) {
	if !s.online() {
		return driving.CycleResult{}, domain.ErrOffline
	}
	if !s.guard.TryLock() {
		return driving.CycleResult{}, domain.ErrSyncInProgress
	}
	defer s.guard.Unlock()

	return s.runLocked(ctx, true), nil
}

// runLocked is the cycle body. The caller holds the guard; this
// function must release nothing and may not panic past its defers.
func (s *AutoSend) runLocked(ctx context.Context, withReference bool) driving.CycleResult {
	s.setBusy(true)
	defer s.setBusy(false)

	result := driving.CycleResult{Ran: true}
	started := s.now()

	s.bus.Publish(events.TopicSyncStarted)
	defer func() {
		s.bus.Publish(events.TopicInvoicesUpdated)
		s.bus.Publish(events.TopicCollectionsUpdated)
		s.bus.Publish(events.TopicSyncCompleted)
		logger.Info("auto-send cycle done in %s: %d invoices sent, %d collections processed, %d partial failures",
			s.now().Sub(started), result.InvoicesSent, result.CollectionsProcessed, len(result.PartialFailures))
	}()

	if withReference {
		if err := s.syncReference(ctx); err != nil {
			logger.Warn("reference sync failed: %v", err)
			result.PartialFailures = append(result.PartialFailures, stageReferenceSync)
		}
	}

	// Stage 1: baseline for the reporting diff.
	baseline, baselineKnown := s.countQueuedCollections(ctx)
	if !baselineKnown {
		result.PartialFailures = append(result.PartialFailures, stageCollectionCount)
	}

	// Stage 2: submit queued invoices.
	sent, err := s.submitQueuedInvoices(ctx)
	result.InvoicesSent = sent
	if err != nil {
		logger.Warn("invoice submission stage failed: %v", err)
		result.PartialFailures = append(result.PartialFailures, stageInvoiceSubmit)
	}

	// Stage 3: refresh balances. A convenience snapshot, never blocking.
	if err := s.syncBalances(ctx); err != nil {
		logger.Warn("balance sync failed: %v", err)
		result.PartialFailures = append(result.PartialFailures, stageBalanceSync)
	}

	// Stage 4: push queued collections. Stage 2's accepted submissions
	// stay accepted even if this fails.
	if err := s.syncCollections(ctx); err != nil {
		logger.Warn("collection sync failed: %v", err)
		result.PartialFailures = append(result.PartialFailures, stageCollectionSync)
	}

	// Stage 5: reporting diff. Approximate by design: an external
	// deletion also shrinks the queue, and that is acceptable for a
	// reporting-only number.
	if baselineKnown {
		if post, ok := s.countQueuedCollections(ctx); ok {
			if diff := baseline - post; diff > 0 {
				result.CollectionsProcessed = diff
			}
		}
	}

	return result
}

// syncReference pulls partners and products, replaces the local copy
// and refreshes the sync timestamps.
func (s *AutoSend) syncReference(ctx context.Context) error {
	settings, err := s.settingsStore.Get(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}

	partners, locations, err := s.gateway.FetchPartners(ctx, settings.AgentMark)
	if err != nil {
		return fmt.Errorf("fetch partners: %w", err)
	}
	if err := s.referenceStore.ReplacePartners(ctx, partners, locations); err != nil {
		return fmt.Errorf("replace partners: %w", err)
	}

	products, err := s.gateway.FetchProducts(ctx)
	if err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}
	if err := s.referenceStore.ReplaceProducts(ctx, products); err != nil {
		return fmt.Errorf("replace products: %w", err)
	}

	now := s.now()
	stamps := domain.SyncTimestamps{Partners: &now, Products: &now}
	if err := s.syncStore.Save(ctx, stamps); err != nil {
		return fmt.Errorf("save sync timestamps: %w", err)
	}

	s.status.ClearFirstRun()
	logger.Info("reference data synced: %d partners, %d products", len(partners), len(products))
	return nil
}

// countQueuedCollections counts pending+failed collections. Used for
// the before/after reporting diff only.
func (s *AutoSend) countQueuedCollections(ctx context.Context) (int, bool) {
	count, err := s.collectionStore.Count(ctx, domain.StatusPending, domain.StatusFailed)
	if err != nil {
		logger.Warn("count queued collections: %v", err)
		return 0, false
	}
	return count, true
}

// submitQueuedInvoices submits every pending and failed invoice,
// oldest first. Failures are per-document: a rejected invoice is
// marked failed with the backend's reason, a transport failure sends
// it back to pending, and the rest of the batch continues either way.
func (s *AutoSend) submitQueuedInvoices(ctx context.Context) (int, error) {
	queued, err := s.invoiceStore.List(ctx, domain.StatusPending, domain.StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("list queued invoices: %w", err)
	}
	if len(queued) == 0 {
		return 0, nil
	}

	settings, err := s.settingsStore.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("get settings: %w", err)
	}
	if settings.AgentName == "" {
		return 0, fmt.Errorf("submit invoices: %w", domain.ErrSettingsIncomplete)
	}

	logger.Info("found %d queued invoices to send", len(queued))

	sent := 0
	for i := range queued {
		invoice := &queued[i]
		if s.submitOneInvoice(ctx, invoice, settings) {
			sent++
		}
	}
	return sent, nil
}

// submitOneInvoice drives one invoice through sending and reports
// whether the backend accepted it.
func (s *AutoSend) submitOneInvoice(ctx context.Context, invoice *domain.Invoice, settings domain.AgentSettings) bool {
	items, err := s.invoiceStore.Items(ctx, invoice.ID)
	if err != nil {
		logger.Warn("load items for invoice %s: %v", invoice.ID, err)
		return false
	}

	if err := s.invoiceStore.SetStatus(ctx, invoice.ID, domain.StatusSending, ""); err != nil {
		logger.Warn("mark invoice %s sending: %v", invoice.ID, err)
		return false
	}

	verdict, err := s.gateway.SubmitInvoice(ctx, invoice, items, settings)
	if err != nil {
		// Transport failure: back to pending, retried next cycle.
		msg := fmt.Sprintf("saved locally, send failed: %v", err)
		if setErr := s.invoiceStore.SetStatus(ctx, invoice.ID, domain.StatusPending, msg); setErr != nil {
			logger.Warn("reset invoice %s to pending: %v", invoice.ID, setErr)
		}
		logger.Debug("invoice %s not sent: %v", invoice.ID, err)
		return false
	}

	if !verdict.Accepted {
		if setErr := s.invoiceStore.SetStatus(ctx, invoice.ID, domain.StatusFailed, verdict.Message); setErr != nil {
			logger.Warn("mark invoice %s failed: %v", invoice.ID, setErr)
		}
		logger.Debug("invoice %s rejected: %s", invoice.ID, verdict.Message)
		return false
	}

	if err := s.invoiceStore.MarkSent(ctx, invoice.ID, verdict.RemoteRef, s.now()); err != nil {
		logger.Warn("mark invoice %s sent: %v", invoice.ID, err)
		return false
	}
	logger.Info("invoice %s accepted as %s", invoice.ID, verdict.RemoteRef)
	return true
}

// syncBalances replaces the balance snapshot from the backend.
func (s *AutoSend) syncBalances(ctx context.Context) error {
	settings, err := s.settingsStore.Get(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}

	balances, err := s.gateway.FetchBalances(ctx, settings.AgentMark)
	if err != nil {
		return fmt.Errorf("fetch balances: %w", err)
	}
	if err := s.balanceStore.ReplaceAll(ctx, balances); err != nil {
		return fmt.Errorf("replace balances: %w", err)
	}

	logger.Debug("balance snapshot replaced: %d rows", len(balances))
	return nil
}

// syncCollections pushes every queued collection group. Group-level
// outcomes mirror invoice submission: rejection marks the group
// failed, transport failure returns it to pending.
func (s *AutoSend) syncCollections(ctx context.Context) error {
	groupIDs, err := s.collectionStore.GroupIDs(ctx, domain.StatusPending, domain.StatusFailed)
	if err != nil {
		return fmt.Errorf("list queued collection groups: %w", err)
	}
	if len(groupIDs) == 0 {
		return nil
	}

	settings, err := s.settingsStore.Get(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}

	for _, groupID := range groupIDs {
		s.sendCollectionGroup(ctx, groupID, settings)
	}
	return nil
}

// sendCollectionGroup submits one receipt group as a single cash
// document. BeginSending is the duplicate-send gate: if another
// submitter got there first the group is skipped silently.
func (s *AutoSend) sendCollectionGroup(ctx context.Context, groupID string, settings domain.AgentSettings) {
	ok, err := s.collectionStore.BeginSending(ctx, groupID)
	if err != nil {
		logger.Warn("begin sending group %s: %v", groupID, err)
		return
	}
	if !ok {
		logger.Debug("collection group %s already sending or synced, skipping", groupID)
		return
	}

	lines, err := s.collectionStore.Group(ctx, groupID)
	if err != nil {
		logger.Warn("load collection group %s: %v", groupID, err)
		if markErr := s.collectionStore.MarkGroupPending(ctx, groupID, "load failed"); markErr != nil {
			logger.Warn("reset group %s to pending: %v", groupID, markErr)
		}
		return
	}

	verdict, err := s.gateway.SubmitCollectionGroup(ctx, lines, settings)
	if err != nil {
		msg := fmt.Sprintf("saved locally, send failed: %v", err)
		if markErr := s.collectionStore.MarkGroupPending(ctx, groupID, msg); markErr != nil {
			logger.Warn("reset group %s to pending: %v", groupID, markErr)
		}
		logger.Debug("collection group %s not sent: %v", groupID, err)
		return
	}

	if !verdict.Accepted {
		if markErr := s.collectionStore.MarkGroupFailed(ctx, groupID, verdict.Message); markErr != nil {
			logger.Warn("mark group %s failed: %v", groupID, markErr)
		}
		logger.Debug("collection group %s rejected: %s", groupID, verdict.Message)
		return
	}

	if err := s.collectionStore.MarkGroupSynced(ctx, groupID, s.now()); err != nil {
		logger.Warn("mark group %s synced: %v", groupID, err)
		return
	}
	logger.Info("collection group %s accepted as %s", groupID, verdict.RemoteRef)
}
