package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// settingsStore implements driven.SettingsStore.
//
// Number allocation runs in a transaction so two allocators can never
// hand out the same number.
type settingsStore struct {
	store *Store
}

var _ driven.SettingsStore = (*settingsStore)(nil)

// Get retrieves the settings. Returns zero-value settings when none
// have been saved yet.
func (s *settingsStore) Get(ctx context.Context) (domain.AgentSettings, error) {
	settings, err := scanSettings(s.store.db.QueryRowContext(ctx, `
		SELECT agent_name, agent_mark, invoice_series,
		       invoice_number_start, invoice_number_end, invoice_number_current,
		       receipt_series, receipt_number_current, receipt_number_end
		FROM settings WHERE id = 1
	`))
	if err == sql.ErrNoRows {
		return domain.AgentSettings{}, nil
	}
	return settings, err
}

// Save stores the settings.
func (s *settingsStore) Save(ctx context.Context, settings domain.AgentSettings) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO settings
			(id, agent_name, agent_mark, invoice_series,
			 invoice_number_start, invoice_number_end, invoice_number_current,
			 receipt_series, receipt_number_current, receipt_number_end)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			agent_name = excluded.agent_name,
			agent_mark = excluded.agent_mark,
			invoice_series = excluded.invoice_series,
			invoice_number_start = excluded.invoice_number_start,
			invoice_number_end = excluded.invoice_number_end,
			invoice_number_current = excluded.invoice_number_current,
			receipt_series = excluded.receipt_series,
			receipt_number_current = excluded.receipt_number_current,
			receipt_number_end = excluded.receipt_number_end
	`, settings.AgentName, settings.AgentMark, settings.InvoiceSeries,
		settings.InvoiceNumberStart, settings.InvoiceNumberEnd, settings.InvoiceNumberCurrent,
		settings.ReceiptSeries, settings.ReceiptNumberCurrent, settings.ReceiptNumberEnd)
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// NextInvoiceNumber atomically allocates the next invoice number from
// the configured range.
func (s *settingsStore) NextInvoiceNumber(ctx context.Context) (int, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	settings, err := scanSettings(tx.QueryRowContext(ctx, `
		SELECT agent_name, agent_mark, invoice_series,
		       invoice_number_start, invoice_number_end, invoice_number_current,
		       receipt_series, receipt_number_current, receipt_number_end
		FROM settings WHERE id = 1
	`))
	if err == sql.ErrNoRows {
		return 0, domain.ErrSettingsIncomplete
	}
	if err != nil {
		return 0, err
	}

	if settings.InvoiceNumberStart == 0 && settings.InvoiceNumberEnd == 0 {
		return 0, domain.ErrSettingsIncomplete
	}
	current := settings.InvoiceNumberCurrent
	if current < settings.InvoiceNumberStart {
		current = settings.InvoiceNumberStart
	}
	if current > settings.InvoiceNumberEnd {
		return 0, domain.ErrNumberRangeExhausted
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE settings SET invoice_number_current = ? WHERE id = 1", current+1); err != nil {
		return 0, fmt.Errorf("advancing invoice number: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return current, nil
}

// NextReceiptNumber atomically allocates the next receipt number.
// Without a configured range it falls back to a timestamp so a receipt
// can always be issued.
func (s *settingsStore) NextReceiptNumber(ctx context.Context) (string, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	settings, err := scanSettings(tx.QueryRowContext(ctx, `
		SELECT agent_name, agent_mark, invoice_series,
		       invoice_number_start, invoice_number_end, invoice_number_current,
		       receipt_series, receipt_number_current, receipt_number_end
		FROM settings WHERE id = 1
	`))
	if err == sql.ErrNoRows || (err == nil && settings.ReceiptNumberCurrent == 0) {
		return strconv.FormatInt(time.Now().Unix(), 10), nil
	}
	if err != nil {
		return "", err
	}

	if settings.ReceiptNumberEnd != 0 && settings.ReceiptNumberCurrent > settings.ReceiptNumberEnd {
		return "", domain.ErrNumberRangeExhausted
	}

	current := settings.ReceiptNumberCurrent
	if _, err := tx.ExecContext(ctx,
		"UPDATE settings SET receipt_number_current = ? WHERE id = 1", current+1); err != nil {
		return "", fmt.Errorf("advancing receipt number: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing transaction: %w", err)
	}
	return strconv.Itoa(current), nil
}

// scanSettings scans the settings row.
func scanSettings(row *sql.Row) (domain.AgentSettings, error) {
	var settings domain.AgentSettings
	if err := row.Scan(&settings.AgentName, &settings.AgentMark, &settings.InvoiceSeries,
		&settings.InvoiceNumberStart, &settings.InvoiceNumberEnd, &settings.InvoiceNumberCurrent,
		&settings.ReceiptSeries, &settings.ReceiptNumberCurrent, &settings.ReceiptNumberEnd); err != nil {
		if err == sql.ErrNoRows {
			return domain.AgentSettings{}, err
		}
		return domain.AgentSettings{}, fmt.Errorf("scanning settings: %w", err)
	}
	return settings, nil
}
