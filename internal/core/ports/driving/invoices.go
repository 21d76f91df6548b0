package driving

import (
	"context"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

// CreateInvoiceItem is one requested invoice line.
type CreateInvoiceItem struct {
	ProductID string
	Quantity  float64
}

// CreateInvoiceRequest creates a local invoice in status pending.
type CreateInvoiceRequest struct {
	PartnerID  string
	LocationID string
	Notes      string
	Items      []CreateInvoiceItem
}

// InvoiceDetail is an invoice with its lines.
type InvoiceDetail struct {
	Invoice domain.Invoice
	Items   []domain.InvoiceItem
}

// InvoiceService manages locally created invoices.
type InvoiceService interface {
	// Create validates the request, prices the lines from the product
	// catalogue, allocates an invoice number and stores the invoice
	// as pending.
	Create(ctx context.Context, req CreateInvoiceRequest) (*domain.Invoice, error)

	// List returns invoices, optionally filtered by status.
	List(ctx context.Context, statuses ...domain.DocumentStatus) ([]domain.Invoice, error)

	// Detail returns an invoice with its lines.
	Detail(ctx context.Context, id string) (*InvoiceDetail, error)

	// Cancel returns a sending invoice to pending. Only sending
	// invoices can be cancelled.
	Cancel(ctx context.Context, id string) (*domain.Invoice, error)

	// Delete removes an invoice that has not been accepted remotely.
	Delete(ctx context.Context, id string) error
}
