package sqlite

import (
	"context"
	"fmt"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// balanceStore implements driven.BalanceStore.
type balanceStore struct {
	store *Store
}

var _ driven.BalanceStore = (*balanceStore)(nil)

// ReplaceAll swaps the stored snapshot for the given one in a single
// transaction, so readers never observe a half-replaced feed.
func (s *balanceStore) ReplaceAll(ctx context.Context, balances []domain.OutstandingBalance) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM balances"); err != nil {
		return fmt.Errorf("clearing balances: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO balances
			(partner_id, series, number, document_code, document_date,
			 partner_name, fiscal_code, document_type, value, rest, term, currency, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(partner_id, series, number, document_code, document_date) DO UPDATE SET
			partner_name = excluded.partner_name,
			fiscal_code = excluded.fiscal_code,
			document_type = excluded.document_type,
			value = excluded.value,
			rest = excluded.rest,
			term = excluded.term,
			currency = excluded.currency,
			synced_at = excluded.synced_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, balance := range balances {
		key := balance.Key.Normalised()
		if _, err := stmt.ExecContext(ctx,
			key.PartnerID, key.Series, key.Number, key.DocumentCode, key.Date,
			balance.PartnerName, balance.FiscalCode, balance.DocumentType,
			int64(balance.Value), int64(balance.Rest), balance.Term, balance.Currency,
			balance.SyncedAt,
		); err != nil {
			return fmt.Errorf("saving balance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// List returns balances, optionally filtered by partner.
func (s *balanceStore) List(ctx context.Context, partnerID string) ([]domain.OutstandingBalance, error) {
	query := `
		SELECT partner_id, series, number, document_code, document_date,
		       partner_name, fiscal_code, document_type, value, rest, term, currency, synced_at
		FROM balances`
	var args []any
	if partnerID != "" {
		query += " WHERE partner_id = ?"
		args = append(args, partnerID)
	}
	query += " ORDER BY document_date, number"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying balances: %w", err)
	}
	defer rows.Close()

	var balances []domain.OutstandingBalance //nolint:prealloc // size unknown from query
	for rows.Next() {
		var balance domain.OutstandingBalance
		var value, rest int64
		if err := rows.Scan(&balance.Key.PartnerID, &balance.Key.Series, &balance.Key.Number,
			&balance.Key.DocumentCode, &balance.Key.Date, &balance.PartnerName,
			&balance.FiscalCode, &balance.DocumentType, &value, &rest,
			&balance.Term, &balance.Currency, &balance.SyncedAt); err != nil {
			return nil, fmt.Errorf("scanning balance: %w", err)
		}
		balance.Value = domain.Money(value)
		balance.Rest = domain.Money(rest)
		balances = append(balances, balance)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating balances: %w", err)
	}

	return balances, nil
}
