package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// referenceStore implements driven.ReferenceStore.
type referenceStore struct {
	store *Store
}

var _ driven.ReferenceStore = (*referenceStore)(nil)

// ReplacePartners swaps all partners and their locations in one
// transaction.
func (s *referenceStore) ReplacePartners(ctx context.Context, partners []domain.Partner, locations []domain.Location) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM partners"); err != nil {
		return fmt.Errorf("clearing partners: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM locations"); err != nil {
		return fmt.Errorf("clearing locations: %w", err)
	}

	partnerStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO partners
			(id, code, name, fiscal_code, trade_register, class, payment_term, currency, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing partner statement: %w", err)
	}
	defer partnerStmt.Close()

	for _, partner := range partners {
		if _, err := partnerStmt.ExecContext(ctx,
			partner.ID, partner.Code, partner.Name, partner.FiscalCode,
			partner.TradeRegister, partner.Class, partner.PaymentTerm, partner.Currency,
			partner.CreatedAt, partner.UpdatedAt,
		); err != nil {
			return fmt.Errorf("saving partner: %w", err)
		}
	}

	locationStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO locations (id, partner_id, name, address, city, county)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing location statement: %w", err)
	}
	defer locationStmt.Close()

	for _, location := range locations {
		if _, err := locationStmt.ExecContext(ctx,
			location.ID, location.PartnerID, location.Name,
			location.Address, location.City, location.County,
		); err != nil {
			return fmt.Errorf("saving location: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReplaceProducts swaps all products.
func (s *referenceStore) ReplaceProducts(ctx context.Context, products []domain.Product) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("clearing products: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (id, name, unit_of_measure, price, class, vat_percent)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing product statement: %w", err)
	}
	defer stmt.Close()

	for _, product := range products {
		if _, err := stmt.ExecContext(ctx,
			product.ID, product.Name, product.UnitOfMeasure,
			int64(product.Price), product.Class, product.VATPercent,
		); err != nil {
			return fmt.Errorf("saving product: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetPartner retrieves a partner by ID.
func (s *referenceStore) GetPartner(ctx context.Context, id string) (*domain.Partner, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, code, name, fiscal_code, trade_register, class, payment_term, currency, created_at, updated_at
		FROM partners WHERE id = ?
	`, id)

	var partner domain.Partner
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&partner.ID, &partner.Code, &partner.Name, &partner.FiscalCode,
		&partner.TradeRegister, &partner.Class, &partner.PaymentTerm, &partner.Currency,
		&createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning partner: %w", err)
	}
	if createdAt.Valid {
		partner.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		partner.UpdatedAt = updatedAt.Time
	}
	return &partner, nil
}

// GetLocation retrieves a location by ID.
func (s *referenceStore) GetLocation(ctx context.Context, id string) (*domain.Location, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, partner_id, name, address, city, county FROM locations WHERE id = ?
	`, id)

	var location domain.Location
	if err := row.Scan(&location.ID, &location.PartnerID, &location.Name,
		&location.Address, &location.City, &location.County); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning location: %w", err)
	}
	return &location, nil
}

// GetProduct retrieves a product by ID.
func (s *referenceStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, unit_of_measure, price, class, vat_percent FROM products WHERE id = ?
	`, id)

	var product domain.Product
	var price int64
	if err := row.Scan(&product.ID, &product.Name, &product.UnitOfMeasure,
		&price, &product.Class, &product.VATPercent); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning product: %w", err)
	}
	product.Price = domain.Money(price)
	return &product, nil
}

// ListPartners returns partners matching the query, sorted by name.
func (s *referenceStore) ListPartners(ctx context.Context, query string) ([]domain.Partner, error) {
	sqlQuery := `
		SELECT id, code, name, fiscal_code, trade_register, class, payment_term, currency, created_at, updated_at
		FROM partners`
	var args []any
	if query != "" {
		sqlQuery += " WHERE name LIKE ? COLLATE NOCASE"
		args = append(args, "%"+query+"%")
	}
	sqlQuery += " ORDER BY name"

	rows, err := s.store.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying partners: %w", err)
	}
	defer rows.Close()

	var partners []domain.Partner //nolint:prealloc // size unknown from query
	for rows.Next() {
		var partner domain.Partner
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&partner.ID, &partner.Code, &partner.Name, &partner.FiscalCode,
			&partner.TradeRegister, &partner.Class, &partner.PaymentTerm, &partner.Currency,
			&createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning partner: %w", err)
		}
		if createdAt.Valid {
			partner.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			partner.UpdatedAt = updatedAt.Time
		}
		partners = append(partners, partner)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating partners: %w", err)
	}

	return partners, nil
}

// ListLocations returns the locations of a partner.
func (s *referenceStore) ListLocations(ctx context.Context, partnerID string) ([]domain.Location, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, partner_id, name, address, city, county
		FROM locations WHERE partner_id = ? ORDER BY name
	`, partnerID)
	if err != nil {
		return nil, fmt.Errorf("querying locations: %w", err)
	}
	defer rows.Close()

	var locations []domain.Location //nolint:prealloc // size unknown from query
	for rows.Next() {
		var location domain.Location
		if err := rows.Scan(&location.ID, &location.PartnerID, &location.Name,
			&location.Address, &location.City, &location.County); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		locations = append(locations, location)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating locations: %w", err)
	}

	return locations, nil
}

// ListProducts returns products matching the query, sorted by name.
func (s *referenceStore) ListProducts(ctx context.Context, query string) ([]domain.Product, error) {
	sqlQuery := "SELECT id, name, unit_of_measure, price, class, vat_percent FROM products"
	var args []any
	if query != "" {
		sqlQuery += " WHERE name LIKE ? COLLATE NOCASE"
		args = append(args, "%"+query+"%")
	}
	sqlQuery += " ORDER BY name"

	rows, err := s.store.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product //nolint:prealloc // size unknown from query
	for rows.Next() {
		var product domain.Product
		var price int64
		if err := rows.Scan(&product.ID, &product.Name, &product.UnitOfMeasure,
			&price, &product.Class, &product.VATPercent); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		product.Price = domain.Money(price)
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}

	return products, nil
}

// HasReferenceData reports whether any partners or products exist.
func (s *referenceStore) HasReferenceData(ctx context.Context) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM partners) + (SELECT COUNT(*) FROM products)
	`).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting reference data: %w", err)
	}
	return count > 0, nil
}
