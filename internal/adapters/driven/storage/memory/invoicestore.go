package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// Ensure InvoiceStore implements the interface.
var _ driven.InvoiceStore = (*InvoiceStore)(nil)

// InvoiceStore is an in-memory implementation of driven.InvoiceStore.
type InvoiceStore struct {
	mu       sync.RWMutex
	invoices map[string]domain.Invoice
	items    map[string][]domain.InvoiceItem
}

// NewInvoiceStore creates a new in-memory invoice store.
func NewInvoiceStore() *InvoiceStore {
	return &InvoiceStore{
		invoices: make(map[string]domain.Invoice),
		items:    make(map[string][]domain.InvoiceItem),
	}
}

// Save stores an invoice with its items.
func (s *InvoiceStore) Save(_ context.Context, invoice *domain.Invoice, items []domain.InvoiceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[invoice.ID] = *invoice
	s.items[invoice.ID] = append([]domain.InvoiceItem(nil), items...)
	return nil
}

// Get retrieves an invoice by ID.
func (s *InvoiceStore) Get(_ context.Context, id string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	invoice, ok := s.invoices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &invoice, nil
}

// Items returns the lines of an invoice.
func (s *InvoiceStore) Items(_ context.Context, invoiceID string) ([]domain.InvoiceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.InvoiceItem(nil), s.items[invoiceID]...), nil
}

// List returns invoices in the given statuses, oldest first.
func (s *InvoiceStore) List(_ context.Context, statuses ...domain.DocumentStatus) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Invoice
	for id := range s.invoices {
		invoice := s.invoices[id]
		if matchesStatus(invoice.Status, statuses) {
			result = append(result, invoice)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// SetStatus records a status change with an optional message.
func (s *InvoiceStore) SetStatus(_ context.Context, id string, status domain.DocumentStatus, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice, ok := s.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	invoice.Status = status
	invoice.ErrorMessage = message
	s.invoices[id] = invoice
	return nil
}

// MarkSent records acceptance by the backend.
func (s *InvoiceStore) MarkSent(_ context.Context, id, remoteRef string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice, ok := s.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	invoice.Status = domain.StatusSent
	invoice.RemoteRef = remoteRef
	invoice.ErrorMessage = ""
	invoice.SentAt = &at
	s.invoices[id] = invoice
	return nil
}

// Delete removes an invoice and its items.
func (s *InvoiceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.invoices, id)
	delete(s.items, id)
	return nil
}

// matchesStatus reports whether the status is in the filter.
// An empty filter matches everything.
func matchesStatus(status domain.DocumentStatus, statuses []domain.DocumentStatus) bool {
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
