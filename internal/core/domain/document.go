package domain

import "time"

// DocumentStatus tracks a locally created document through its
// submission lifecycle.
type DocumentStatus string

// Document lifecycle states.
const (
	// StatusPending means the document is queued locally and has never
	// been accepted by the backend.
	StatusPending DocumentStatus = "pending"

	// StatusSending means a submission attempt is in progress.
	StatusSending DocumentStatus = "sending"

	// StatusSent means the backend accepted the document and returned
	// a remote identifier.
	StatusSent DocumentStatus = "sent"

	// StatusSynced means the document has been reconciled with the
	// backend's authoritative state.
	StatusSynced DocumentStatus = "synced"

	// StatusFailed means the backend rejected the document. The
	// rejection reason is recorded on the document.
	StatusFailed DocumentStatus = "failed"
)

// ParseDocumentStatus maps a stored string to a status.
// Unknown values fall back to pending so a damaged row is retried
// rather than stranded.
func ParseDocumentStatus(s string) DocumentStatus {
	switch DocumentStatus(s) {
	case StatusPending, StatusSending, StatusSent, StatusSynced, StatusFailed:
		return DocumentStatus(s)
	default:
		return StatusPending
	}
}

// CanTransition reports whether a status change is permitted.
// pending→sending→sent|synced|failed, failed→sending (retry) and
// sending→pending (explicit cancellation) are the only legal moves.
func (s DocumentStatus) CanTransition(to DocumentStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusSending
	case StatusSending:
		return to == StatusSent || to == StatusSynced || to == StatusFailed || to == StatusPending
	case StatusFailed:
		return to == StatusSending
	case StatusSent, StatusSynced:
		return false
	default:
		return false
	}
}

// Terminal reports whether the document has been accepted remotely.
func (s DocumentStatus) Terminal() bool {
	return s == StatusSent || s == StatusSynced
}

// Invoice is a locally created sales invoice queued for submission.
type Invoice struct {
	// ID is the local unique identifier.
	ID string

	// Number is the invoice number allocated from the agent's range.
	Number int

	// PartnerID identifies the customer.
	PartnerID string

	// PartnerName is denormalised for listing without a join.
	PartnerName string

	// LocationID identifies the delivery location.
	LocationID string

	// LocationName is denormalised for listing.
	LocationName string

	// Status is the current lifecycle state.
	Status DocumentStatus

	// TotalAmount is the invoice total.
	TotalAmount Money

	// ItemCount is the number of lines.
	ItemCount int

	// Notes is free text entered by the agent.
	Notes string

	// CreatedAt is when the invoice was created locally.
	CreatedAt time.Time

	// SentAt is when the backend accepted the invoice, if it has.
	SentAt *time.Time

	// RemoteRef is the backend's identifier for the accepted invoice.
	RemoteRef string

	// ErrorMessage holds the last submission failure, if any.
	ErrorMessage string
}

// InvoiceItem is a single invoice line.
type InvoiceItem struct {
	ID            string
	InvoiceID     string
	ProductID     string
	ProductName   string
	Quantity      float64
	UnitOfMeasure string
	UnitPrice     Money
	TotalPrice    Money
}

// Collection is one payment receipt line, allocated against a single
// outstanding balance. Lines created from one payment share a GroupID
// and are submitted to the backend as one cash document.
type Collection struct {
	// ID is the local unique identifier of this line.
	ID string

	// GroupID links the lines of one payment event.
	GroupID string

	// ReceiptSeries and ReceiptNumber identify the printed receipt.
	ReceiptSeries string
	ReceiptNumber string

	// PartnerID identifies the paying customer.
	PartnerID string

	// PartnerName is denormalised for listing.
	PartnerName string

	// InvoiceSeries, InvoiceNumber and DocumentCode identify the
	// outstanding document this line pays down.
	InvoiceSeries string
	InvoiceNumber string
	DocumentCode  string
	DocumentDate  string

	// Amount is the value allocated to this balance.
	Amount Money

	// CollectedAt is the payment date.
	CollectedAt time.Time

	// Status is the current lifecycle state.
	Status DocumentStatus

	// SyncedAt is when the backend accepted the group, if it has.
	SyncedAt *time.Time

	// ErrorMessage holds the last submission failure, if any.
	ErrorMessage string

	// CreatedAt is when the line was recorded locally.
	CreatedAt time.Time
}

// BalanceKey returns the composite key of the balance this line pays.
func (c *Collection) BalanceKey() BalanceKey {
	return BalanceKey{
		PartnerID:    c.PartnerID,
		Series:       c.InvoiceSeries,
		Number:       c.InvoiceNumber,
		DocumentCode: c.DocumentCode,
		Date:         c.DocumentDate,
	}.Normalised()
}
