package wme

import (
	"strconv"
	"strings"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

// DataSnap method names exposed by the bridge.
const (
	methodGetPartners   = "GetInfoParteneri"
	methodGetProducts   = "GetInfoArticole"
	methodGetBalances   = "GetSolduriClienti"
	methodImportInvoice = "ImportaDocumente"
	methodImportCash    = "ImportaDocumenteCasaBanca"
)

// Wire constants of the import endpoints.
const (
	outgoingInvoiceType = "FACTURA IESIRE"
	cashSource          = "CASA"
	cashTransactionKind = "Incasare"
	cashDocumentType    = "Chitanta"
	cashSubject         = "Client"
	defaultCurrency     = "RON"

	// wireDateLayout is the dd.mm.yyyy format the bridge expects.
	wireDateLayout = "02.01.2006"
)

// paging carries pagination state. The bridge speaks numbers as
// strings.
type paging struct {
	Page       string `json:"Pagina,omitempty"`
	PerPage    string `json:"Inregistrari,omitempty"`
	TotalPages string `json:"TotalPagini,omitempty"`
}

// morePages reports whether another page should be requested after the
// given one. A missing or unparseable total falls back to fetching
// until an empty page arrives.
func morePages(p *paging, page int) bool {
	if p == nil || strings.TrimSpace(p.TotalPages) == "" {
		return true
	}
	total, err := strconv.Atoi(strings.TrimSpace(p.TotalPages))
	if err != nil {
		return true
	}
	return page < total
}

type partnerFilter struct {
	AgentMark string  `json:"MarcaAgent,omitempty"`
	Paging    *paging `json:"Paginare,omitempty"`
}

type partnerFeed struct {
	Result   string       `json:"Result"`
	Paging   *paging      `json:"Paginare"`
	Partners []partnerRow `json:"InfoParteneri"`
}

type partnerRow struct {
	ID            string        `json:"ID"`
	Code          string        `json:"Cod"`
	Name          string        `json:"Denumire"`
	FiscalCode    string        `json:"CodFiscal"`
	TradeRegister string        `json:"RegistruComert"`
	Class         string        `json:"SimbolClasa"`
	PaymentTerm   string        `json:"ScadentaLaVanzare"`
	Currency      string        `json:"Moneda"`
	Locations     []locationRow `json:"Sedii"`
}

func (r partnerRow) toDomain() domain.Partner {
	return domain.Partner{
		ID:            strings.TrimSpace(r.ID),
		Code:          strings.TrimSpace(r.Code),
		Name:          strings.TrimSpace(r.Name),
		FiscalCode:    strings.TrimSpace(r.FiscalCode),
		TradeRegister: strings.TrimSpace(r.TradeRegister),
		Class:         strings.TrimSpace(r.Class),
		PaymentTerm:   strings.TrimSpace(r.PaymentTerm),
		Currency:      strings.TrimSpace(r.Currency),
	}
}

type locationRow struct {
	ID     string `json:"IDSediu"`
	Name   string `json:"Denumire"`
	Street string `json:"Strada"`
	Number string `json:"Numar"`
	City   string `json:"Localitate"`
	County string `json:"Judet"`
}

func (r locationRow) toDomain(partnerID string) domain.Location {
	address := strings.TrimSpace(strings.TrimSpace(r.Street) + " " + strings.TrimSpace(r.Number))
	return domain.Location{
		ID:        strings.TrimSpace(r.ID),
		PartnerID: partnerID,
		Name:      strings.TrimSpace(r.Name),
		Address:   address,
		City:      strings.TrimSpace(r.City),
		County:    strings.TrimSpace(r.County),
	}
}

type productFilter struct {
	Inactive string  `json:"Inactiv,omitempty"`
	Blocked  string  `json:"Blocat,omitempty"`
	Paging   *paging `json:"Paginare,omitempty"`
}

type productFeed struct {
	Result   string       `json:"Result"`
	Paging   *paging      `json:"Paginare"`
	Products []productRow `json:"InfoArticole"`
}

type productRow struct {
	ID         string `json:"ID"`
	Name       string `json:"Denumire"`
	Unit       string `json:"UM"`
	Price      string `json:"PretVanzare"`
	Class      string `json:"Clasa"`
	VATPercent string `json:"ProcentTVA"`
}

func (r productRow) toDomain() domain.Product {
	return domain.Product{
		ID:            strings.TrimSpace(r.ID),
		Name:          strings.TrimSpace(r.Name),
		UnitOfMeasure: strings.TrimSpace(r.Unit),
		Price:         parseWireAmount(r.Price),
		Class:         strings.TrimSpace(r.Class),
		VATPercent:    parseWireFloat(r.VATPercent),
	}
}

type balanceFilter struct {
	AgentMark string  `json:"MarcaAgent,omitempty"`
	PartnerID string  `json:"IDPartener,omitempty"`
	Paging    *paging `json:"Paginare,omitempty"`
}

type balanceFeed struct {
	Result   string       `json:"Result"`
	Paging   *paging      `json:"Paginare"`
	Balances []balanceRow `json:"InfoSolduri"`
}

type balanceRow struct {
	PartnerID    string `json:"IDPartener"`
	PartnerName  string `json:"Denumire"`
	FiscalCode   string `json:"CodFiscal"`
	DocumentType string `json:"TipDocument"`
	DocumentCode string `json:"CodDocument"`
	Series       string `json:"Serie"`
	Number       string `json:"Numar"`
	Date         string `json:"Data"`
	Value        string `json:"Valoare"`
	Rest         string `json:"Rest"`
	Term         string `json:"Termen"`
	Currency     string `json:"Moneda"`
}

type invoiceImport struct {
	DocumentType string            `json:"TipDocument"`
	WorkYear     string            `json:"AnLucru"`
	WorkMonth    string            `json:"LunaLucru"`
	Documents    []invoiceDocument `json:"Documente"`
}

type invoiceDocument struct {
	DocumentType string        `json:"TipDocument"`
	Number       string        `json:"NumarDocument"`
	Series       string        `json:"SimbolCarnet"`
	Date         string        `json:"Data"`
	Operation    string        `json:"Operatie"`
	Cancelled    string        `json:"Anulat"`
	ClientID     string        `json:"IDClient"`
	LocationID   string        `json:"IDSediu,omitempty"`
	Agent        string        `json:"Agent"`
	Currency     string        `json:"Moneda"`
	Rate         string        `json:"Curs"`
	Notes        string        `json:"Observatii,omitempty"`
	Items        []invoiceLine `json:"Items"`
}

type invoiceLine struct {
	ProductID string  `json:"IDArticol"`
	Quantity  float64 `json:"Cant"`
	Price     float64 `json:"Pret"`
	Unit      string  `json:"UM,omitempty"`
}

type cashImport struct {
	WorkYear  string         `json:"AnLucru"`
	WorkMonth string         `json:"LunaLucru"`
	Documents []cashDocument `json:"Documente"`
}

type cashDocument struct {
	Source       string            `json:"Sursa"`
	Register     string            `json:"NumeCasa"`
	Date         string            `json:"Data"`
	Agent        string            `json:"Agent"`
	Currency     string            `json:"Moneda"`
	Transactions []cashTransaction `json:"Tranzactii"`
}

type cashTransaction struct {
	Kind         string              `json:"TipTranzactie"`
	DocumentType string              `json:"TipDoc"`
	Series       string              `json:"SerieDoc"`
	Number       string              `json:"NrDoc"`
	Subject      string              `json:"ObiectTranzactie"`
	Date         string              `json:"Data"`
	Rate         float64             `json:"Curs"`
	PartnerID    string              `json:"IDPartener"`
	Value        float64             `json:"Valoare"`
	Cancelled    string              `json:"Anulat"`
	Distribution []valueDistribution `json:"DistribuireValoare"`
}

type valueDistribution struct {
	Represents    string  `json:"Reprezinta"`
	InvoiceNumber string  `json:"NumarFactura"`
	InvoiceSeries string  `json:"SerieFactura"`
	Value         float64 `json:"Valoare"`
}

// importResult is the bridge's verdict on an import request.
type importResult struct {
	Result    string             `json:"Result"`
	Documents []importedDocument `json:"DocumenteImportate"`
	Errors    []string           `json:"ErrorList"`
}

type importedDocument struct {
	Series string `json:"Serie"`
	Number string `json:"Numar"`
}

// message assembles a rejection message from the result code and the
// error list.
func (r importResult) message(fallback string) string {
	var parts []string
	if s := strings.TrimSpace(r.Result); s != "" && !strings.EqualFold(s, "ok") {
		parts = append(parts, s)
	}
	for _, e := range r.Errors {
		if e = strings.TrimSpace(e); e != "" {
			parts = append(parts, e)
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, "; ")
}

// parseWireAmount converts a string-typed amount from the feed.
// Malformed values read as zero, matching how the bridge pads empty
// fields.
func parseWireAmount(s string) domain.Money {
	return domain.MoneyFromFloat(parseWireFloat(s))
}

func parseWireFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
