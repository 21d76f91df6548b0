package domain

// AgentSettings holds the field agent's identity and the document
// number ranges assigned to them.
type AgentSettings struct {
	// AgentName appears on submitted documents. Required for sending.
	AgentName string

	// AgentMark is the backend's agent identifier, used to filter
	// balance feeds. Optional; when empty the feed is unfiltered.
	AgentMark string

	// InvoiceSeries is the series for locally issued invoices.
	InvoiceSeries string

	// InvoiceNumberStart, InvoiceNumberEnd and InvoiceNumberCurrent
	// define the allocated invoice number range. Current is the next
	// number to hand out.
	InvoiceNumberStart   int
	InvoiceNumberEnd     int
	InvoiceNumberCurrent int

	// ReceiptSeries is the series for payment receipts. Falls back to
	// "CH" when unset.
	ReceiptSeries string

	// ReceiptNumberCurrent and ReceiptNumberEnd define the receipt
	// number range. When Current is zero, receipt numbers fall back to
	// a timestamp.
	ReceiptNumberCurrent int
	ReceiptNumberEnd     int
}

// DefaultReceiptSeries is used when no receipt series is configured.
const DefaultReceiptSeries = "CH"
