package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// SettingsStore is an in-memory implementation of driven.SettingsStore.
type SettingsStore struct {
	mu       sync.Mutex
	settings domain.AgentSettings

	now func() time.Time
}

// NewSettingsStore creates a new in-memory settings store.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{now: time.Now}
}

// Get retrieves the settings.
func (s *SettingsStore) Get(_ context.Context) (domain.AgentSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

// Save stores the settings.
func (s *SettingsStore) Save(_ context.Context, settings domain.AgentSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

// NextInvoiceNumber atomically allocates the next invoice number.
func (s *SettingsStore) NextInvoiceNumber(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings.InvoiceNumberStart == 0 && s.settings.InvoiceNumberEnd == 0 {
		return 0, domain.ErrSettingsIncomplete
	}
	if s.settings.InvoiceNumberCurrent < s.settings.InvoiceNumberStart {
		s.settings.InvoiceNumberCurrent = s.settings.InvoiceNumberStart
	}
	if s.settings.InvoiceNumberCurrent > s.settings.InvoiceNumberEnd {
		return 0, domain.ErrNumberRangeExhausted
	}

	number := s.settings.InvoiceNumberCurrent
	s.settings.InvoiceNumberCurrent++
	return number, nil
}

// NextReceiptNumber atomically allocates the next receipt number.
// Without a configured range it falls back to a timestamp so a receipt
// can always be issued.
func (s *SettingsStore) NextReceiptNumber(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings.ReceiptNumberCurrent == 0 {
		return strconv.FormatInt(s.now().Unix(), 10), nil
	}
	if s.settings.ReceiptNumberEnd != 0 && s.settings.ReceiptNumberCurrent > s.settings.ReceiptNumberEnd {
		return "", domain.ErrNumberRangeExhausted
	}

	number := s.settings.ReceiptNumberCurrent
	s.settings.ReceiptNumberCurrent++
	return strconv.Itoa(number), nil
}
