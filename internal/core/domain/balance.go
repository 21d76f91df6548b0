package domain

import (
	"strings"
	"time"
)

// BalanceKey identifies one outstanding balance. A series/number pair
// is not globally unique across the backend's document types, so the
// key is a composite of partner, series, number, document code and
// document date.
type BalanceKey struct {
	PartnerID    string
	Series       string
	Number       string
	DocumentCode string
	Date         string
}

// Normalised returns the key with every component trimmed.
// Keys must be normalised before comparison; backend feeds pad fields
// inconsistently.
func (k BalanceKey) Normalised() BalanceKey {
	return BalanceKey{
		PartnerID:    strings.TrimSpace(k.PartnerID),
		Series:       strings.TrimSpace(k.Series),
		Number:       strings.TrimSpace(k.Number),
		DocumentCode: strings.TrimSpace(k.DocumentCode),
		Date:         strings.TrimSpace(k.Date),
	}
}

// String renders the key for logs and error messages.
func (k BalanceKey) String() string {
	n := k.Normalised()
	return n.PartnerID + "|" + n.Series + "|" + n.Number + "|" + n.DocumentCode + "|" + n.Date
}

// OutstandingBalance is one unpaid document reported by the backend,
// as stored after the last balance sync.
type OutstandingBalance struct {
	// Key identifies the document.
	Key BalanceKey

	// PartnerName and FiscalCode are denormalised for display.
	PartnerName string
	FiscalCode  string

	// DocumentType is the backend's document type label.
	DocumentType string

	// Value is the full document value.
	Value Money

	// Rest is the unpaid remainder as reported by the backend. The
	// effective remainder shown to the agent additionally subtracts
	// local in-flight collections; see EffectiveRest.
	Rest Money

	// Term is the due date as reported by the backend.
	Term string

	// Currency is the document currency.
	Currency string

	// SyncedAt is when this row was fetched.
	SyncedAt time.Time
}

// EffectiveRest returns the remainder after subtracting the given
// locally collected total, floored at zero. Local collections that are
// pending, sending or synced all count: a balance disappears only when
// the collected total reaches the full remainder.
func (b *OutstandingBalance) EffectiveRest(collected Money) Money {
	rest := b.Rest - collected
	if rest < 0 {
		return 0
	}
	return rest
}
