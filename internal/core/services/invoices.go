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

// Ensure Invoices implements the interface.
var _ driving.InvoiceService = (*Invoices)(nil)

// Invoices manages locally created invoices. Creation is fully local;
// submission belongs to the auto-send pipeline.
type Invoices struct {
	store          driven.InvoiceStore
	referenceStore driven.ReferenceStore
	settingsStore  driven.SettingsStore
	bus            *events.Bus

	now func() time.Time
}

// NewInvoices creates the invoice service.
func NewInvoices(
	store driven.InvoiceStore,
	referenceStore driven.ReferenceStore,
	settingsStore driven.SettingsStore,
	bus *events.Bus,
) *Invoices {
	return &Invoices{
		store:          store,
		referenceStore: referenceStore,
		settingsStore:  settingsStore,
		bus:            bus,
		now:            time.Now,
	}
}

// Create validates the request, prices the lines from the product
// catalogue and stores the invoice as pending. Prices always come from
// the local catalogue, never from the caller.
func (s *Invoices) Create(ctx context.Context, req driving.CreateInvoiceRequest) (*domain.Invoice, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("invoice needs at least one item: %w", domain.ErrInvalidInput)
	}

	partner, err := s.referenceStore.GetPartner(ctx, req.PartnerID)
	if err != nil {
		return nil, fmt.Errorf("get partner %s: %w", req.PartnerID, err)
	}

	var locationName string
	if req.LocationID != "" {
		location, err := s.referenceStore.GetLocation(ctx, req.LocationID)
		if err != nil {
			return nil, fmt.Errorf("get location %s: %w", req.LocationID, err)
		}
		if location.PartnerID != partner.ID {
			return nil, fmt.Errorf("location %s does not belong to partner %s: %w",
				req.LocationID, req.PartnerID, domain.ErrInvalidInput)
		}
		locationName = location.Name
	}

	number, err := s.settingsStore.NextInvoiceNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate invoice number: %w", err)
	}

	invoiceID := uuid.NewString()
	items := make([]domain.InvoiceItem, 0, len(req.Items))
	var total domain.Money

	for _, reqItem := range req.Items {
		if reqItem.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive for product %s: %w",
				reqItem.ProductID, domain.ErrInvalidInput)
		}

		product, err := s.referenceStore.GetProduct(ctx, reqItem.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product %s: %w", reqItem.ProductID, err)
		}

		lineTotal := domain.MoneyFromFloat(reqItem.Quantity * product.Price.Float())
		items = append(items, domain.InvoiceItem{
			ID:            uuid.NewString(),
			InvoiceID:     invoiceID,
			ProductID:     product.ID,
			ProductName:   product.Name,
			Quantity:      reqItem.Quantity,
			UnitOfMeasure: product.UnitOfMeasure,
			UnitPrice:     product.Price,
			TotalPrice:    lineTotal,
		})
		total += lineTotal
	}

	invoice := &domain.Invoice{
		ID:           invoiceID,
		Number:       number,
		PartnerID:    partner.ID,
		PartnerName:  partner.Name,
		LocationID:   req.LocationID,
		LocationName: locationName,
		Status:       domain.StatusPending,
		TotalAmount:  total,
		ItemCount:    len(items),
		Notes:        req.Notes,
		CreatedAt:    s.now(),
	}

	if err := s.store.Save(ctx, invoice, items); err != nil {
		return nil, fmt.Errorf("save invoice: %w", err)
	}

	s.bus.Publish(events.TopicInvoicesUpdated)
	return invoice, nil
}

// List returns invoices, optionally filtered by status.
func (s *Invoices) List(ctx context.Context, statuses ...domain.DocumentStatus) ([]domain.Invoice, error) {
	return s.store.List(ctx, statuses...)
}

// Detail returns an invoice with its lines.
func (s *Invoices) Detail(ctx context.Context, id string) (*driving.InvoiceDetail, error) {
	invoice, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice %s: %w", id, err)
	}
	items, err := s.store.Items(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice items %s: %w", id, err)
	}
	return &driving.InvoiceDetail{Invoice: *invoice, Items: items}, nil
}

// Cancel returns a sending invoice to pending. No other state can be
// cancelled: pending is not in flight and accepted documents are the
// backend's.
func (s *Invoices) Cancel(ctx context.Context, id string) (*domain.Invoice, error) {
	invoice, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice %s: %w", id, err)
	}
	if invoice.Status != domain.StatusSending {
		return nil, fmt.Errorf("cancel invoice in status %s: %w", invoice.Status, domain.ErrInvalidTransition)
	}

	if err := s.store.SetStatus(ctx, id, domain.StatusPending, "cancelled by agent"); err != nil {
		return nil, fmt.Errorf("cancel invoice %s: %w", id, err)
	}

	invoice.Status = domain.StatusPending
	invoice.ErrorMessage = "cancelled by agent"
	s.bus.Publish(events.TopicInvoicesUpdated)
	return invoice, nil
}

// Delete removes an invoice the backend has not accepted.
func (s *Invoices) Delete(ctx context.Context, id string) error {
	invoice, err := s.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get invoice %s: %w", id, err)
	}
	if invoice.Status.Terminal() {
		return fmt.Errorf("delete accepted invoice: %w", domain.ErrInvalidTransition)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete invoice %s: %w", id, err)
	}

	s.bus.Publish(events.TopicInvoicesUpdated)
	return nil
}
