package driven

import (
	"context"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

// SubmitResult is the backend's verdict on a submitted document.
//
// A transport failure is returned as an error instead; the caller
// treats it as "still offline" and leaves the document queued. The
// backend tolerates resubmission of an already-accepted document, so
// retrying after an ambiguous failure is safe.
type SubmitResult struct {
	// Accepted is true when the backend created the document.
	Accepted bool

	// RemoteRef is the backend's identifier for the created document
	// (series and number), set when Accepted.
	RemoteRef string

	// Message carries the rejection reason when not Accepted.
	Message string
}

// BackendGateway is the narrow command surface to the central system.
type BackendGateway interface {
	// SubmitInvoice submits one invoice with its lines.
	SubmitInvoice(ctx context.Context, invoice *domain.Invoice, items []domain.InvoiceItem, settings domain.AgentSettings) (SubmitResult, error)

	// SubmitCollectionGroup submits the lines of one payment as a
	// single cash document with per-invoice value distribution.
	SubmitCollectionGroup(ctx context.Context, lines []domain.Collection, settings domain.AgentSettings) (SubmitResult, error)

	// FetchPartners retrieves partners and their locations, optionally
	// filtered by agent mark.
	FetchPartners(ctx context.Context, agentMark string) ([]domain.Partner, []domain.Location, error)

	// FetchProducts retrieves the sellable products.
	FetchProducts(ctx context.Context) ([]domain.Product, error)

	// FetchBalances retrieves outstanding client balances, optionally
	// filtered by agent mark.
	FetchBalances(ctx context.Context, agentMark string) ([]domain.OutstandingBalance, error)
}
