package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// collectionStore implements driven.CollectionStore.
type collectionStore struct {
	store *Store
}

var _ driven.CollectionStore = (*collectionStore)(nil)

const collectionColumns = `id, group_id, receipt_series, receipt_number, partner_id, partner_name,
	invoice_series, invoice_number, document_code, document_date,
	amount, collected_at, status, synced_at, error_message, created_at`

// SaveGroup stores all lines of one payment atomically.
func (s *collectionStore) SaveGroup(ctx context.Context, lines []domain.Collection) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO collections (`+collectionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, line := range lines {
		if _, err := stmt.ExecContext(ctx,
			line.ID, line.GroupID, line.ReceiptSeries, line.ReceiptNumber,
			line.PartnerID, line.PartnerName, line.InvoiceSeries, line.InvoiceNumber,
			line.DocumentCode, line.DocumentDate, int64(line.Amount), line.CollectedAt,
			string(line.Status), nullTime(line.SyncedAt), line.ErrorMessage, line.CreatedAt,
		); err != nil {
			return fmt.Errorf("saving collection line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Group returns the lines sharing a group ID.
func (s *collectionStore) Group(ctx context.Context, groupID string) ([]domain.Collection, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+collectionColumns+" FROM collections WHERE group_id = ? ORDER BY created_at", groupID)
	if err != nil {
		return nil, fmt.Errorf("querying collection group: %w", err)
	}
	defer rows.Close()

	lines, err := scanCollections(rows)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrNotFound
	}
	return lines, nil
}

// List returns collections in the given statuses, oldest first.
func (s *collectionStore) List(ctx context.Context, statuses ...domain.DocumentStatus) ([]domain.Collection, error) {
	query := "SELECT " + collectionColumns + " FROM collections"
	where, args := statusFilter(statuses)
	query += where + " ORDER BY created_at"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	return scanCollections(rows)
}

// GroupIDs returns the distinct group IDs of matching collections,
// oldest first.
func (s *collectionStore) GroupIDs(ctx context.Context, statuses ...domain.DocumentStatus) ([]string, error) {
	query := "SELECT group_id FROM collections"
	where, args := statusFilter(statuses)
	query += where + " GROUP BY group_id ORDER BY MIN(created_at)"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying collection groups: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning group id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collection groups: %w", err)
	}

	return ids, nil
}

// Count returns the number of matching collections.
func (s *collectionStore) Count(ctx context.Context, statuses ...domain.DocumentStatus) (int, error) {
	query := "SELECT COUNT(*) FROM collections"
	where, args := statusFilter(statuses)
	query += where

	var count int
	if err := s.store.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting collections: %w", err)
	}
	return count, nil
}

// HasInFlight reports whether a pending or sending line exists for the
// balance key. Comparison runs on trimmed fields because backend feeds
// pad inconsistently.
func (s *collectionStore) HasInFlight(ctx context.Context, key domain.BalanceKey) (bool, error) {
	key = key.Normalised()
	var count int
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM collections
		WHERE status IN (?, ?)
		  AND TRIM(partner_id) = ? AND TRIM(invoice_series) = ? AND TRIM(invoice_number) = ?
		  AND TRIM(document_code) = ? AND TRIM(document_date) = ?
	`, string(domain.StatusPending), string(domain.StatusSending),
		key.PartnerID, key.Series, key.Number, key.DocumentCode, key.Date).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking in-flight collections: %w", err)
	}
	return count > 0, nil
}

// CollectedByKey sums the partner's pending, sending and synced lines
// per balance key.
func (s *collectionStore) CollectedByKey(ctx context.Context, partnerID string) (map[domain.BalanceKey]domain.Money, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT partner_id, invoice_series, invoice_number, document_code, document_date, amount
		FROM collections
		WHERE partner_id = ? AND status IN (?, ?, ?)
	`, partnerID, string(domain.StatusPending), string(domain.StatusSending), string(domain.StatusSynced))
	if err != nil {
		return nil, fmt.Errorf("querying collected amounts: %w", err)
	}
	defer rows.Close()

	collected := make(map[domain.BalanceKey]domain.Money)
	for rows.Next() {
		var key domain.BalanceKey
		var amount int64
		if err := rows.Scan(&key.PartnerID, &key.Series, &key.Number,
			&key.DocumentCode, &key.Date, &amount); err != nil {
			return nil, fmt.Errorf("scanning collected amount: %w", err)
		}
		collected[key.Normalised()] += domain.Money(amount)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collected amounts: %w", err)
	}

	return collected, nil
}

// BeginSending atomically moves a group to sending. The guard subquery
// keeps two submitters from racing past each other: the update is a
// no-op when any line of the group is already sending or synced.
func (s *collectionStore) BeginSending(ctx context.Context, groupID string) (bool, error) {
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE collections
		SET status = ?, error_message = ''
		WHERE group_id = ?
		  AND NOT EXISTS (
			SELECT 1 FROM collections
			WHERE group_id = ? AND status IN (?, ?)
		  )
	`, string(domain.StatusSending), groupID, groupID,
		string(domain.StatusSending), string(domain.StatusSynced))
	if err != nil {
		return false, fmt.Errorf("claiming collection group: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking affected rows: %w", err)
	}
	return affected > 0, nil
}

// MarkGroupSynced records acceptance of the whole group.
func (s *collectionStore) MarkGroupSynced(ctx context.Context, groupID string, at time.Time) error {
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE collections SET status = ?, error_message = '', synced_at = ? WHERE group_id = ?
	`, string(domain.StatusSynced), at, groupID)
	if err != nil {
		return fmt.Errorf("marking group synced: %w", err)
	}
	return requireRow(result)
}

// MarkGroupFailed records rejection of the whole group.
func (s *collectionStore) MarkGroupFailed(ctx context.Context, groupID, message string) error {
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE collections SET status = ?, error_message = ?, synced_at = NULL WHERE group_id = ?
	`, string(domain.StatusFailed), message, groupID)
	if err != nil {
		return fmt.Errorf("marking group failed: %w", err)
	}
	return requireRow(result)
}

// MarkGroupPending returns a group to pending after a transport failure.
func (s *collectionStore) MarkGroupPending(ctx context.Context, groupID, message string) error {
	result, err := s.store.db.ExecContext(ctx, `
		UPDATE collections SET status = ?, error_message = ?, synced_at = NULL WHERE group_id = ?
	`, string(domain.StatusPending), message, groupID)
	if err != nil {
		return fmt.Errorf("marking group pending: %w", err)
	}
	return requireRow(result)
}

// Delete removes a single line.
func (s *collectionStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM collections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return requireRow(result)
}

// scanCollections scans multiple collection rows.
func scanCollections(rows *sql.Rows) ([]domain.Collection, error) {
	var lines []domain.Collection //nolint:prealloc // size unknown from query
	for rows.Next() {
		var line domain.Collection
		var status string
		var amount int64
		var syncedAt sql.NullTime
		if err := rows.Scan(&line.ID, &line.GroupID, &line.ReceiptSeries, &line.ReceiptNumber,
			&line.PartnerID, &line.PartnerName, &line.InvoiceSeries, &line.InvoiceNumber,
			&line.DocumentCode, &line.DocumentDate, &amount, &line.CollectedAt,
			&status, &syncedAt, &line.ErrorMessage, &line.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		line.Status = domain.ParseDocumentStatus(status)
		line.Amount = domain.Money(amount)
		if syncedAt.Valid {
			line.SyncedAt = &syncedAt.Time
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}

	return lines, nil
}
