package driven

import (
	"context"
	"time"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

// InvoiceStore persists locally created invoices and their lines.
// The store records status transitions; lifecycle legality is decided
// by the services that call it.
type InvoiceStore interface {
	// Save stores an invoice with its items.
	Save(ctx context.Context, invoice *domain.Invoice, items []domain.InvoiceItem) error

	// Get retrieves an invoice by ID.
	Get(ctx context.Context, id string) (*domain.Invoice, error)

	// Items returns the lines of an invoice.
	Items(ctx context.Context, invoiceID string) ([]domain.InvoiceItem, error)

	// List returns invoices in the given statuses, oldest first.
	// With no statuses, all invoices are returned.
	List(ctx context.Context, statuses ...domain.DocumentStatus) ([]domain.Invoice, error)

	// SetStatus records a status change together with an optional
	// error message. An empty message clears the stored one.
	SetStatus(ctx context.Context, id string, status domain.DocumentStatus, message string) error

	// MarkSent records acceptance by the backend: status sent, the
	// remote reference and the acceptance time.
	MarkSent(ctx context.Context, id, remoteRef string, at time.Time) error

	// Delete removes an invoice and its items.
	Delete(ctx context.Context, id string) error
}
