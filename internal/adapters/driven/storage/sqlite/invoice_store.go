package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// invoiceStore implements driven.InvoiceStore.
type invoiceStore struct {
	store *Store
}

var _ driven.InvoiceStore = (*invoiceStore)(nil)

// Save stores an invoice with its items in one transaction.
func (s *invoiceStore) Save(ctx context.Context, invoice *domain.Invoice, items []domain.InvoiceItem) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices
			(id, number, partner_id, partner_name, location_id, location_name,
			 status, total_amount, item_count, notes, created_at, sent_at, remote_ref, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			number = excluded.number,
			partner_id = excluded.partner_id,
			partner_name = excluded.partner_name,
			location_id = excluded.location_id,
			location_name = excluded.location_name,
			status = excluded.status,
			total_amount = excluded.total_amount,
			item_count = excluded.item_count,
			notes = excluded.notes,
			sent_at = excluded.sent_at,
			remote_ref = excluded.remote_ref,
			error_message = excluded.error_message
	`, invoice.ID, invoice.Number, invoice.PartnerID, invoice.PartnerName,
		invoice.LocationID, invoice.LocationName, string(invoice.Status),
		int64(invoice.TotalAmount), invoice.ItemCount, invoice.Notes,
		invoice.CreatedAt, nullTime(invoice.SentAt), invoice.RemoteRef, invoice.ErrorMessage)
	if err != nil {
		return fmt.Errorf("saving invoice: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM invoice_items WHERE invoice_id = ?", invoice.ID); err != nil {
		return fmt.Errorf("clearing invoice items: %w", err)
	}

	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO invoice_items
				(id, invoice_id, product_id, product_name, quantity, unit_of_measure, unit_price, total_price)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, item.ID, item.InvoiceID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitOfMeasure, int64(item.UnitPrice), int64(item.TotalPrice))
		if err != nil {
			return fmt.Errorf("saving invoice item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get retrieves an invoice by ID.
func (s *invoiceStore) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, number, partner_id, partner_name, location_id, location_name,
		       status, total_amount, item_count, notes, created_at, sent_at, remote_ref, error_message
		FROM invoices WHERE id = ?
	`, id)

	invoice, err := scanInvoice(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return invoice, nil
}

// Items returns the lines of an invoice.
func (s *invoiceStore) Items(ctx context.Context, invoiceID string) ([]domain.InvoiceItem, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, invoice_id, product_id, product_name, quantity, unit_of_measure, unit_price, total_price
		FROM invoice_items WHERE invoice_id = ?
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("querying invoice items: %w", err)
	}
	defer rows.Close()

	var items []domain.InvoiceItem //nolint:prealloc // size unknown from query
	for rows.Next() {
		var item domain.InvoiceItem
		var unitPrice, totalPrice int64
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitOfMeasure, &unitPrice, &totalPrice); err != nil {
			return nil, fmt.Errorf("scanning invoice item: %w", err)
		}
		item.UnitPrice = domain.Money(unitPrice)
		item.TotalPrice = domain.Money(totalPrice)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoice items: %w", err)
	}

	return items, nil
}

// List returns invoices in the given statuses, oldest first.
func (s *invoiceStore) List(ctx context.Context, statuses ...domain.DocumentStatus) ([]domain.Invoice, error) {
	query := `
		SELECT id, number, partner_id, partner_name, location_id, location_name,
		       status, total_amount, item_count, notes, created_at, sent_at, remote_ref, error_message
		FROM invoices`
	where, args := statusFilter(statuses)
	query += where + " ORDER BY created_at"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying invoices: %w", err)
	}
	defer rows.Close()

	var invoices []domain.Invoice //nolint:prealloc // size unknown from query
	for rows.Next() {
		invoice, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}

	return invoices, nil
}

// SetStatus records a status change with an optional message.
func (s *invoiceStore) SetStatus(ctx context.Context, id string, status domain.DocumentStatus, message string) error {
	result, err := s.store.db.ExecContext(ctx,
		"UPDATE invoices SET status = ?, error_message = ? WHERE id = ?",
		string(status), message, id)
	if err != nil {
		return fmt.Errorf("updating invoice status: %w", err)
	}
	return requireRow(result)
}

// MarkSent records acceptance by the backend.
func (s *invoiceStore) MarkSent(ctx context.Context, id, remoteRef string, at time.Time) error {
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE invoices
		SET status = ?, remote_ref = ?, error_message = '', sent_at = ?
		WHERE id = ?
	`, string(domain.StatusSent), remoteRef, at, id)
	if err != nil {
		return fmt.Errorf("marking invoice sent: %w", err)
	}
	return requireRow(result)
}

// Delete removes an invoice; its items follow via the foreign key.
func (s *invoiceStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}
	return requireRow(result)
}

// scanInvoice scans one invoice row via the given scan function.
func scanInvoice(scan func(dest ...any) error) (*domain.Invoice, error) {
	var invoice domain.Invoice
	var status string
	var totalAmount int64
	var sentAt sql.NullTime

	if err := scan(&invoice.ID, &invoice.Number, &invoice.PartnerID, &invoice.PartnerName,
		&invoice.LocationID, &invoice.LocationName, &status, &totalAmount,
		&invoice.ItemCount, &invoice.Notes, &invoice.CreatedAt, &sentAt,
		&invoice.RemoteRef, &invoice.ErrorMessage); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning invoice: %w", err)
	}

	invoice.Status = domain.ParseDocumentStatus(status)
	invoice.TotalAmount = domain.Money(totalAmount)
	if sentAt.Valid {
		invoice.SentAt = &sentAt.Time
	}

	return &invoice, nil
}

// statusFilter renders a WHERE clause for a status filter. An empty
// filter matches everything.
func statusFilter(statuses []domain.DocumentStatus) (string, []any) {
	if len(statuses) == 0 {
		return "", nil
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = string(status)
	}
	return " WHERE status IN (" + strings.Join(placeholders, ", ") + ")", args
}

// requireRow converts a zero-row update into ErrNotFound.
func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// nullTime maps an optional time to its SQL representation.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
