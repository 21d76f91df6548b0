package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// Ensure ReferenceStore implements the interface.
var _ driven.ReferenceStore = (*ReferenceStore)(nil)

// ReferenceStore is an in-memory implementation of driven.ReferenceStore.
type ReferenceStore struct {
	mu        sync.RWMutex
	partners  map[string]domain.Partner
	locations map[string]domain.Location
	products  map[string]domain.Product
}

// NewReferenceStore creates a new in-memory reference store.
func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{
		partners:  make(map[string]domain.Partner),
		locations: make(map[string]domain.Location),
		products:  make(map[string]domain.Product),
	}
}

// ReplacePartners swaps all partners and their locations.
func (s *ReferenceStore) ReplacePartners(_ context.Context, partners []domain.Partner, locations []domain.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partners = make(map[string]domain.Partner, len(partners))
	for _, partner := range partners {
		s.partners[partner.ID] = partner
	}
	s.locations = make(map[string]domain.Location, len(locations))
	for _, location := range locations {
		s.locations[location.ID] = location
	}
	return nil
}

// ReplaceProducts swaps all products.
func (s *ReferenceStore) ReplaceProducts(_ context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[string]domain.Product, len(products))
	for _, product := range products {
		s.products[product.ID] = product
	}
	return nil
}

// GetPartner retrieves a partner by ID.
func (s *ReferenceStore) GetPartner(_ context.Context, id string) (*domain.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	partner, ok := s.partners[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &partner, nil
}

// GetLocation retrieves a location by ID.
func (s *ReferenceStore) GetLocation(_ context.Context, id string) (*domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	location, ok := s.locations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &location, nil
}

// GetProduct retrieves a product by ID.
func (s *ReferenceStore) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &product, nil
}

// ListPartners returns partners matching the query, sorted by name.
func (s *ReferenceStore) ListPartners(_ context.Context, query string) ([]domain.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	query = strings.ToLower(strings.TrimSpace(query))
	var result []domain.Partner
	for _, partner := range s.partners {
		if query == "" || strings.Contains(strings.ToLower(partner.Name), query) {
			result = append(result, partner)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ListLocations returns the locations of a partner.
func (s *ReferenceStore) ListLocations(_ context.Context, partnerID string) ([]domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Location
	for _, location := range s.locations {
		if location.PartnerID == partnerID {
			result = append(result, location)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// ListProducts returns products matching the query, sorted by name.
func (s *ReferenceStore) ListProducts(_ context.Context, query string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	query = strings.ToLower(strings.TrimSpace(query))
	var result []domain.Product
	for _, product := range s.products {
		if query == "" || strings.Contains(strings.ToLower(product.Name), query) {
			result = append(result, product)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// HasReferenceData reports whether any partners or products exist.
func (s *ReferenceStore) HasReferenceData(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.partners) > 0 || len(s.products) > 0, nil
}
