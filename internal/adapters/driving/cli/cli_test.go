package cli

import (
	"bytes"
	"context"
	"sync"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driving"
)

// Shared test doubles for the command tests. Each test swaps the
// package-level service vars and restores them afterwards.

type mockAutoSender struct {
	mu         sync.Mutex
	result     driving.CycleResult
	syncErr    error
	syncCalls  int
	cycleCalls int
}

func (m *mockAutoSender) RunCycle(_ context.Context) driving.CycleResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycleCalls++
	return m.result
}

func (m *mockAutoSender) SyncNow(_ context.Context) (driving.CycleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncCalls++
	if m.syncErr != nil {
		return driving.CycleResult{}, m.syncErr
	}
	return m.result, nil
}

func (m *mockAutoSender) Busy() bool { return false }

type mockInvoiceService struct {
	invoices  []domain.Invoice
	created   *driving.CreateInvoiceRequest
	createErr error
}

func (m *mockInvoiceService) Create(_ context.Context, req driving.CreateInvoiceRequest) (*domain.Invoice, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = &req
	return &domain.Invoice{ID: "inv1", Number: 100, TotalAmount: 8100, Status: domain.StatusPending}, nil
}

func (m *mockInvoiceService) List(_ context.Context, _ ...domain.DocumentStatus) ([]domain.Invoice, error) {
	return m.invoices, nil
}

func (m *mockInvoiceService) Detail(_ context.Context, id string) (*driving.InvoiceDetail, error) {
	for _, invoice := range m.invoices {
		if invoice.ID == id {
			return &driving.InvoiceDetail{Invoice: invoice}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockInvoiceService) Cancel(_ context.Context, id string) (*domain.Invoice, error) {
	return &domain.Invoice{ID: id, Number: 100, Status: domain.StatusPending}, nil
}

func (m *mockInvoiceService) Delete(_ context.Context, _ string) error { return nil }

type mockCollectionService struct {
	balances    []domain.OutstandingBalance
	collections []domain.Collection
	recorded    *driving.CreateCollectionGroupRequest
	recordErr   error
}

func (m *mockCollectionService) Balances(_ context.Context, _ string) ([]domain.OutstandingBalance, error) {
	return m.balances, nil
}

func (m *mockCollectionService) RecordGroup(_ context.Context, req driving.CreateCollectionGroupRequest) (string, error) {
	if m.recordErr != nil {
		return "", m.recordErr
	}
	m.recorded = &req
	return "g1", nil
}

func (m *mockCollectionService) List(_ context.Context, _ ...domain.DocumentStatus) ([]domain.Collection, error) {
	return m.collections, nil
}

func (m *mockCollectionService) Delete(_ context.Context, _ string) error { return nil }

type mockStatusService struct {
	state domain.SyncState
}

func (m *mockStatusService) SyncState(_ context.Context) (domain.SyncState, error) {
	return m.state, nil
}

func (m *mockStatusService) RefreshFirstRun(_ context.Context) (bool, error) {
	return m.state.FirstRun, nil
}

type mockConnectivity struct {
	online bool
}

func (m *mockConnectivity) Start(_ context.Context) error { return nil }
func (m *mockConnectivity) Stop() error                   { return nil }
func (m *mockConnectivity) Online() bool                  { return m.online }
func (m *mockConnectivity) Notify(_ context.Context)      {}

type mockSettingsStore struct {
	settings domain.AgentSettings
}

func (m *mockSettingsStore) Get(_ context.Context) (domain.AgentSettings, error) {
	return m.settings, nil
}

func (m *mockSettingsStore) Save(_ context.Context, settings domain.AgentSettings) error {
	m.settings = settings
	return nil
}

func (m *mockSettingsStore) NextInvoiceNumber(_ context.Context) (int, error) { return 100, nil }

func (m *mockSettingsStore) NextReceiptNumber(_ context.Context) (string, error) { return "500", nil }

var (
	_ driving.AutoSender          = (*mockAutoSender)(nil)
	_ driving.InvoiceService      = (*mockInvoiceService)(nil)
	_ driving.CollectionService   = (*mockCollectionService)(nil)
	_ driving.StatusService       = (*mockStatusService)(nil)
	_ driving.ConnectivityMonitor = (*mockConnectivity)(nil)
	_ driven.SettingsStore        = (*mockSettingsStore)(nil)
)

// execute runs the root command with the given args and returns its
// combined output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
