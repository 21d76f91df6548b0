package driven

import (
	"context"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

// ReferenceStore holds partners, locations and products synced from
// the backend. Reference data is replaced wholesale on each full sync.
type ReferenceStore interface {
	// ReplacePartners swaps all partners and their locations.
	ReplacePartners(ctx context.Context, partners []domain.Partner, locations []domain.Location) error

	// ReplaceProducts swaps all products.
	ReplaceProducts(ctx context.Context, products []domain.Product) error

	// GetPartner retrieves a partner by ID.
	GetPartner(ctx context.Context, id string) (*domain.Partner, error)

	// GetLocation retrieves a location by ID.
	GetLocation(ctx context.Context, id string) (*domain.Location, error)

	// GetProduct retrieves a product by ID.
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// ListPartners returns partners whose name contains the query,
	// or all partners when the query is empty.
	ListPartners(ctx context.Context, query string) ([]domain.Partner, error)

	// ListLocations returns the locations of a partner.
	ListLocations(ctx context.Context, partnerID string) ([]domain.Location, error)

	// ListProducts returns products whose name contains the query,
	// or all products when the query is empty.
	ListProducts(ctx context.Context, query string) ([]domain.Product, error)

	// HasReferenceData reports whether any partners or products exist
	// locally. The first-run decision is derived from this.
	HasReferenceData(ctx context.Context) (bool, error)
}
