package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockInvoiceStore implements driven.InvoiceStore for testing.
type mockInvoiceStore struct {
	mu       sync.Mutex
	invoices map[string]*domain.Invoice
	items    map[string][]domain.InvoiceItem
}

func newMockInvoiceStore() *mockInvoiceStore {
	return &mockInvoiceStore{
		invoices: make(map[string]*domain.Invoice),
		items:    make(map[string][]domain.InvoiceItem),
	}
}

func (m *mockInvoiceStore) Save(_ context.Context, invoice *domain.Invoice, items []domain.InvoiceItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *invoice
	m.invoices[invoice.ID] = &cp
	m.items[invoice.ID] = append([]domain.InvoiceItem(nil), items...)
	return nil
}

func (m *mockInvoiceStore) Get(_ context.Context, id string) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	invoice, ok := m.invoices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *invoice
	return &cp, nil
}

func (m *mockInvoiceStore) Items(_ context.Context, invoiceID string) ([]domain.InvoiceItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.InvoiceItem(nil), m.items[invoiceID]...), nil
}

func (m *mockInvoiceStore) List(_ context.Context, statuses ...domain.DocumentStatus) ([]domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Invoice
	for _, invoice := range m.invoices {
		if statusMatches(invoice.Status, statuses) {
			out = append(out, *invoice)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockInvoiceStore) SetStatus(_ context.Context, id string, status domain.DocumentStatus, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	invoice, ok := m.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	invoice.Status = status
	invoice.ErrorMessage = message
	return nil
}

func (m *mockInvoiceStore) MarkSent(_ context.Context, id, remoteRef string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	invoice, ok := m.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	invoice.Status = domain.StatusSent
	invoice.RemoteRef = remoteRef
	invoice.ErrorMessage = ""
	invoice.SentAt = &at
	return nil
}

func (m *mockInvoiceStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.invoices[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.invoices, id)
	delete(m.items, id)
	return nil
}

func (m *mockInvoiceStore) status(id string) domain.DocumentStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invoices[id].Status
}

// mockCollectionStore implements driven.CollectionStore for testing.
type mockCollectionStore struct {
	mu       sync.Mutex
	lines    []domain.Collection
	countErr error
}

func newMockCollectionStore() *mockCollectionStore {
	return &mockCollectionStore{}
}

func (m *mockCollectionStore) SaveGroup(_ context.Context, lines []domain.Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, lines...)
	return nil
}

func (m *mockCollectionStore) Group(_ context.Context, groupID string) ([]domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Collection
	for _, line := range m.lines {
		if line.GroupID == groupID {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (m *mockCollectionStore) List(_ context.Context, statuses ...domain.DocumentStatus) ([]domain.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Collection
	for _, line := range m.lines {
		if statusMatches(line.Status, statuses) {
			out = append(out, line)
		}
	}
	return out, nil
}

func (m *mockCollectionStore) GroupIDs(_ context.Context, statuses ...domain.DocumentStatus) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, line := range m.lines {
		if statusMatches(line.Status, statuses) && !seen[line.GroupID] {
			seen[line.GroupID] = true
			out = append(out, line.GroupID)
		}
	}
	return out, nil
}

func (m *mockCollectionStore) Count(_ context.Context, statuses ...domain.DocumentStatus) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	count := 0
	for _, line := range m.lines {
		if statusMatches(line.Status, statuses) {
			count++
		}
	}
	return count, nil
}

func (m *mockCollectionStore) HasInFlight(_ context.Context, key domain.BalanceKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key = key.Normalised()
	for _, line := range m.lines {
		if line.Status != domain.StatusPending && line.Status != domain.StatusSending {
			continue
		}
		if line.BalanceKey() == key {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCollectionStore) CollectedByKey(_ context.Context, partnerID string) (map[domain.BalanceKey]domain.Money, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.BalanceKey]domain.Money)
	for _, line := range m.lines {
		if line.PartnerID != partnerID {
			continue
		}
		switch line.Status {
		case domain.StatusPending, domain.StatusSending, domain.StatusSynced:
			out[line.BalanceKey()] += line.Amount
		}
	}
	return out, nil
}

func (m *mockCollectionStore) BeginSending(_ context.Context, groupID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	eligible := false
	for _, line := range m.lines {
		if line.GroupID != groupID {
			continue
		}
		if line.Status == domain.StatusSending || line.Status == domain.StatusSynced {
			return false, nil
		}
		eligible = true
	}
	if !eligible {
		return false, nil
	}
	for i := range m.lines {
		if m.lines[i].GroupID == groupID {
			m.lines[i].Status = domain.StatusSending
		}
	}
	return true, nil
}

func (m *mockCollectionStore) MarkGroupSynced(_ context.Context, groupID string, at time.Time) error {
	return m.markGroup(groupID, domain.StatusSynced, "", &at)
}

func (m *mockCollectionStore) MarkGroupFailed(_ context.Context, groupID, message string) error {
	return m.markGroup(groupID, domain.StatusFailed, message, nil)
}

func (m *mockCollectionStore) MarkGroupPending(_ context.Context, groupID, message string) error {
	return m.markGroup(groupID, domain.StatusPending, message, nil)
}

func (m *mockCollectionStore) markGroup(groupID string, status domain.DocumentStatus, message string, at *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.lines {
		if m.lines[i].GroupID == groupID {
			m.lines[i].Status = status
			m.lines[i].ErrorMessage = message
			m.lines[i].SyncedAt = at
		}
	}
	return nil
}

func (m *mockCollectionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.lines {
		if m.lines[i].ID == id {
			m.lines = append(m.lines[:i], m.lines[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// mockBalanceStore implements driven.BalanceStore for testing.
type mockBalanceStore struct {
	mu       sync.Mutex
	balances []domain.OutstandingBalance
}

func newMockBalanceStore() *mockBalanceStore {
	return &mockBalanceStore{}
}

func (m *mockBalanceStore) ReplaceAll(_ context.Context, balances []domain.OutstandingBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances = append([]domain.OutstandingBalance(nil), balances...)
	return nil
}

func (m *mockBalanceStore) List(_ context.Context, partnerID string) ([]domain.OutstandingBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.OutstandingBalance
	for _, balance := range m.balances {
		if partnerID == "" || balance.Key.PartnerID == partnerID {
			out = append(out, balance)
		}
	}
	return out, nil
}

// mockReferenceStore implements driven.ReferenceStore for testing.
type mockReferenceStore struct {
	mu        sync.Mutex
	partners  map[string]domain.Partner
	locations map[string]domain.Location
	products  map[string]domain.Product
}

func newMockReferenceStore() *mockReferenceStore {
	return &mockReferenceStore{
		partners:  make(map[string]domain.Partner),
		locations: make(map[string]domain.Location),
		products:  make(map[string]domain.Product),
	}
}

func (m *mockReferenceStore) ReplacePartners(_ context.Context, partners []domain.Partner, locations []domain.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partners = make(map[string]domain.Partner, len(partners))
	for _, p := range partners {
		m.partners[p.ID] = p
	}
	m.locations = make(map[string]domain.Location, len(locations))
	for _, l := range locations {
		m.locations[l.ID] = l
	}
	return nil
}

func (m *mockReferenceStore) ReplaceProducts(_ context.Context, products []domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = make(map[string]domain.Product, len(products))
	for _, p := range products {
		m.products[p.ID] = p
	}
	return nil
}

func (m *mockReferenceStore) GetPartner(_ context.Context, id string) (*domain.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partners[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *mockReferenceStore) GetLocation(_ context.Context, id string) (*domain.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (m *mockReferenceStore) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (m *mockReferenceStore) ListPartners(_ context.Context, _ string) ([]domain.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Partner, 0, len(m.partners))
	for _, p := range m.partners {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockReferenceStore) ListLocations(_ context.Context, partnerID string) ([]domain.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Location
	for _, l := range m.locations {
		if l.PartnerID == partnerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockReferenceStore) ListProducts(_ context.Context, _ string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockReferenceStore) HasReferenceData(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.partners) > 0 || len(m.products) > 0, nil
}

// mockSyncStateStore implements driven.SyncStateStore for testing.
type mockSyncStateStore struct {
	mu     sync.Mutex
	stamps domain.SyncTimestamps
}

func newMockSyncStateStore() *mockSyncStateStore {
	return &mockSyncStateStore{}
}

func (m *mockSyncStateStore) Get(_ context.Context) (domain.SyncTimestamps, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stamps, nil
}

func (m *mockSyncStateStore) Save(_ context.Context, stamps domain.SyncTimestamps) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stamps = stamps
	return nil
}

// mockSettingsStore implements driven.SettingsStore for testing.
type mockSettingsStore struct {
	mu       sync.Mutex
	settings domain.AgentSettings
}

func newMockSettingsStore() *mockSettingsStore {
	return &mockSettingsStore{settings: testSettings()}
}

// testSettings is a fully configured agent, shared by the fixtures.
func testSettings() domain.AgentSettings {
	return domain.AgentSettings{
		AgentName:            "Test Agent",
		AgentMark:            "AG1",
		InvoiceSeries:        "FLD",
		InvoiceNumberStart:   100,
		InvoiceNumberEnd:     199,
		InvoiceNumberCurrent: 100,
		ReceiptSeries:        "CH",
		ReceiptNumberCurrent: 500,
		ReceiptNumberEnd:     599,
	}
}

func (m *mockSettingsStore) Get(_ context.Context) (domain.AgentSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings, nil
}

func (m *mockSettingsStore) Save(_ context.Context, settings domain.AgentSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = settings
	return nil
}

func (m *mockSettingsStore) NextInvoiceNumber(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings.InvoiceNumberEnd == 0 {
		return 0, domain.ErrSettingsIncomplete
	}
	if m.settings.InvoiceNumberCurrent > m.settings.InvoiceNumberEnd {
		return 0, domain.ErrNumberRangeExhausted
	}
	n := m.settings.InvoiceNumberCurrent
	m.settings.InvoiceNumberCurrent++
	return n, nil
}

func (m *mockSettingsStore) NextReceiptNumber(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings.ReceiptNumberCurrent == 0 {
		return fmt.Sprintf("%d", time.Now().Unix()), nil
	}
	if m.settings.ReceiptNumberEnd != 0 && m.settings.ReceiptNumberCurrent > m.settings.ReceiptNumberEnd {
		return "", domain.ErrNumberRangeExhausted
	}
	n := m.settings.ReceiptNumberCurrent
	m.settings.ReceiptNumberCurrent++
	return strconv.Itoa(n), nil
}

// mockGateway implements driven.BackendGateway for testing. Each
// method delegates to an optional hook; without one, everything is
// accepted or returns empty data.
type mockGateway struct {
	mu sync.Mutex

	submitInvoiceFn func(invoice *domain.Invoice) (driven.SubmitResult, error)
	submitGroupFn   func(lines []domain.Collection) (driven.SubmitResult, error)
	fetchBalancesFn func() ([]domain.OutstandingBalance, error)
	fetchPartnersFn func() ([]domain.Partner, []domain.Location, error)
	fetchProductsFn func() ([]domain.Product, error)

	invoiceCalls int
	groupCalls   int
	balanceCalls int
}

func newMockGateway() *mockGateway {
	return &mockGateway{}
}

func (m *mockGateway) SubmitInvoice(_ context.Context, invoice *domain.Invoice, _ []domain.InvoiceItem, _ domain.AgentSettings) (driven.SubmitResult, error) {
	m.mu.Lock()
	m.invoiceCalls++
	fn := m.submitInvoiceFn
	m.mu.Unlock()
	if fn != nil {
		return fn(invoice)
	}
	return driven.SubmitResult{Accepted: true, RemoteRef: "FLD-" + strconv.Itoa(invoice.Number)}, nil
}

func (m *mockGateway) SubmitCollectionGroup(_ context.Context, lines []domain.Collection, _ domain.AgentSettings) (driven.SubmitResult, error) {
	m.mu.Lock()
	m.groupCalls++
	fn := m.submitGroupFn
	m.mu.Unlock()
	if fn != nil {
		return fn(lines)
	}
	return driven.SubmitResult{Accepted: true, RemoteRef: "CH-1"}, nil
}

func (m *mockGateway) FetchPartners(_ context.Context, _ string) ([]domain.Partner, []domain.Location, error) {
	m.mu.Lock()
	fn := m.fetchPartnersFn
	m.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return nil, nil, nil
}

func (m *mockGateway) FetchProducts(_ context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	fn := m.fetchProductsFn
	m.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return nil, nil
}

func (m *mockGateway) FetchBalances(_ context.Context, _ string) ([]domain.OutstandingBalance, error) {
	m.mu.Lock()
	m.balanceCalls++
	fn := m.fetchBalancesFn
	m.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return nil, nil
}

// mockProbe implements driven.ReachabilityProbe for testing.
type mockProbe struct {
	mu        sync.Mutex
	reachable bool
	checks    int
	checkFn   func(ctx context.Context) bool
}

func (m *mockProbe) Check(ctx context.Context) bool {
	m.mu.Lock()
	m.checks++
	fn := m.checkFn
	reachable := m.reachable
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return reachable
}

func (m *mockProbe) set(reachable bool) {
	m.mu.Lock()
	m.reachable = reachable
	m.mu.Unlock()
}

func (m *mockProbe) checkCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checks
}

func statusMatches(status domain.DocumentStatus, statuses []domain.DocumentStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Ensure mocks implement their interfaces
var _ driven.InvoiceStore = (*mockInvoiceStore)(nil)
var _ driven.CollectionStore = (*mockCollectionStore)(nil)
var _ driven.BalanceStore = (*mockBalanceStore)(nil)
var _ driven.ReferenceStore = (*mockReferenceStore)(nil)
var _ driven.SyncStateStore = (*mockSyncStateStore)(nil)
var _ driven.SettingsStore = (*mockSettingsStore)(nil)
var _ driven.BackendGateway = (*mockGateway)(nil)
var _ driven.ReachabilityProbe = (*mockProbe)(nil)
