package domain

import "time"

// Partner is a customer synced from the backend.
type Partner struct {
	ID            string
	Code          string
	Name          string
	FiscalCode    string
	TradeRegister string
	Class         string
	PaymentTerm   string
	Currency      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Location is a partner delivery location.
type Location struct {
	ID        string
	PartnerID string
	Name      string
	Address   string
	City      string
	County    string
}

// Product is a sellable article synced from the backend.
type Product struct {
	ID            string
	Name          string
	UnitOfMeasure string
	Price         Money
	Class         string
	VATPercent    float64
}
