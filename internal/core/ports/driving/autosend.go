package driving

import "context"

// CycleResult summarises one auto-send cycle for reporting.
type CycleResult struct {
	// Ran is false when the cycle was a no-op (guard held or offline).
	Ran bool

	// InvoicesSent is how many invoices the backend accepted.
	InvoicesSent int

	// CollectionsProcessed is the drop in pending+failed collections
	// across the cycle, floored at zero. It is a derived, reporting-only
	// approximation, not a source of truth.
	CollectionsProcessed int

	// PartialFailures names the stages that failed without stopping
	// the cycle.
	PartialFailures []string
}

// AutoSender runs the staged reconciliation pipeline.
type AutoSender interface {
	// RunCycle runs one cycle. At most one cycle runs at a time; a
	// trigger during a running cycle is dropped, not queued. Offline
	// is a silent no-op. RunCycle never returns an error: inner stage
	// failures are absorbed into the result.
	RunCycle(ctx context.Context) CycleResult

	// SyncNow is the manual trigger. It additionally refreshes the
	// reference data (partners, products) before submitting, and is
	// rejected with domain.ErrOffline when the backend is unreachable,
	// or domain.ErrSyncInProgress when a cycle is already running.
	SyncNow(ctx context.Context) (CycleResult, error)

	// Busy reports whether a cycle is currently running.
	Busy() bool
}
