package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldbill/fieldbill-cli/internal/adapters/driven/storage/memory"
	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driving"
	"github.com/fieldbill/fieldbill-cli/internal/events"
)

func newInvoicesFixture() (*Invoices, *memory.InvoiceStore, *memory.ReferenceStore, *memory.SettingsStore) {
	store := memory.NewInvoiceStore()
	reference := memory.NewReferenceStore()
	settings := memory.NewSettingsStore()
	service := NewInvoices(store, reference, settings, events.NewBus())

	ctx := context.Background()
	_ = settings.Save(ctx, testSettings())
	_ = reference.ReplacePartners(ctx,
		[]domain.Partner{{ID: "p1", Name: "Partner One"}},
		[]domain.Location{
			{ID: "l1", PartnerID: "p1", Name: "HQ"},
			{ID: "l2", PartnerID: "p2", Name: "Elsewhere"},
		})
	_ = reference.ReplaceProducts(ctx, []domain.Product{
		{ID: "prod1", Name: "Widget", UnitOfMeasure: "pcs", Price: 2550},
		{ID: "prod2", Name: "Gadget", UnitOfMeasure: "box", Price: 1000},
	})
	return service, store, reference, settings
}

func TestInvoices_CreatePricesFromCatalogue(t *testing.T) {
	service, store, _, _ := newInvoicesFixture()

	invoice, err := service.Create(context.Background(), driving.CreateInvoiceRequest{
		PartnerID:  "p1",
		LocationID: "l1",
		Notes:      "morning round",
		Items: []driving.CreateInvoiceItem{
			{ProductID: "prod1", Quantity: 2},
			{ProductID: "prod2", Quantity: 3},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, invoice.Status)
	assert.Equal(t, 100, invoice.Number)
	assert.Equal(t, "Partner One", invoice.PartnerName)
	assert.Equal(t, "HQ", invoice.LocationName)
	// 2 * 25.50 + 3 * 10.00 = 81.00
	assert.Equal(t, domain.Money(8100), invoice.TotalAmount)
	assert.Equal(t, 2, invoice.ItemCount)

	items, err := store.Items(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, domain.Money(5100), items[0].TotalPrice)
	assert.Equal(t, "pcs", items[0].UnitOfMeasure)
}

func TestInvoices_CreateAllocatesSequentialNumbers(t *testing.T) {
	service, _, _, _ := newInvoicesFixture()
	ctx := context.Background()
	req := driving.CreateInvoiceRequest{
		PartnerID: "p1",
		Items:     []driving.CreateInvoiceItem{{ProductID: "prod1", Quantity: 1}},
	}

	first, err := service.Create(ctx, req)
	require.NoError(t, err)
	second, err := service.Create(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 100, first.Number)
	assert.Equal(t, 101, second.Number)
}

func TestInvoices_CreateRejectsExhaustedRange(t *testing.T) {
	service, _, _, settings := newInvoicesFixture()

	exhausted := testSettings()
	exhausted.InvoiceNumberCurrent = 200 // past InvoiceNumberEnd
	require.NoError(t, settings.Save(context.Background(), exhausted))

	_, err := service.Create(context.Background(), driving.CreateInvoiceRequest{
		PartnerID: "p1",
		Items:     []driving.CreateInvoiceItem{{ProductID: "prod1", Quantity: 1}},
	})

	require.ErrorIs(t, err, domain.ErrNumberRangeExhausted)
}

func TestInvoices_CreateValidation(t *testing.T) {
	service, _, _, _ := newInvoicesFixture()
	ctx := context.Background()

	tests := []struct {
		name    string
		req     driving.CreateInvoiceRequest
		wantErr error
	}{
		{
			name:    "no items",
			req:     driving.CreateInvoiceRequest{PartnerID: "p1"},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "unknown partner",
			req: driving.CreateInvoiceRequest{
				PartnerID: "missing",
				Items:     []driving.CreateInvoiceItem{{ProductID: "prod1", Quantity: 1}},
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "location of another partner",
			req: driving.CreateInvoiceRequest{
				PartnerID:  "p1",
				LocationID: "l2",
				Items:      []driving.CreateInvoiceItem{{ProductID: "prod1", Quantity: 1}},
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "zero quantity",
			req: driving.CreateInvoiceRequest{
				PartnerID: "p1",
				Items:     []driving.CreateInvoiceItem{{ProductID: "prod1", Quantity: 0}},
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "unknown product",
			req: driving.CreateInvoiceRequest{
				PartnerID: "p1",
				Items:     []driving.CreateInvoiceItem{{ProductID: "missing", Quantity: 1}},
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestInvoices_CancelOnlyFromSending(t *testing.T) {
	service, store, _, _ := newInvoicesFixture()
	ctx := context.Background()

	invoice, err := service.Create(ctx, driving.CreateInvoiceRequest{
		PartnerID: "p1",
		Items:     []driving.CreateInvoiceItem{{ProductID: "prod1", Quantity: 1}},
	})
	require.NoError(t, err)

	// Pending cannot be cancelled: it is not in flight.
	_, err = service.Cancel(ctx, invoice.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, store.SetStatus(ctx, invoice.ID, domain.StatusSending, ""))
	cancelled, err := service.Cancel(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, cancelled.Status)

	// Accepted documents belong to the backend.
	require.NoError(t, store.SetStatus(ctx, invoice.ID, domain.StatusSent, ""))
	_, err = service.Cancel(ctx, invoice.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestInvoices_DeleteRefusesAcceptedInvoice(t *testing.T) {
	service, store, _, _ := newInvoicesFixture()
	ctx := context.Background()

	invoice, err := service.Create(ctx, driving.CreateInvoiceRequest{
		PartnerID: "p1",
		Items:     []driving.CreateInvoiceItem{{ProductID: "prod1", Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, store.SetStatus(ctx, invoice.ID, domain.StatusSent, ""))
	err = service.Delete(ctx, invoice.ID)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, store.SetStatus(ctx, invoice.ID, domain.StatusFailed, "rejected"))
	require.NoError(t, service.Delete(ctx, invoice.ID))

	_, err = service.Detail(ctx, invoice.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInvoices_DetailReturnsLines(t *testing.T) {
	service, _, _, _ := newInvoicesFixture()
	ctx := context.Background()

	invoice, err := service.Create(ctx, driving.CreateInvoiceRequest{
		PartnerID: "p1",
		Items:     []driving.CreateInvoiceItem{{ProductID: "prod1", Quantity: 4}},
	})
	require.NoError(t, err)

	detail, err := service.Detail(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, detail.Invoice.ID)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, domain.Money(10200), detail.Items[0].TotalPrice)
}
