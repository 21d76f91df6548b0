package wme

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.BackendGateway = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultRequestRate  = 4.0
	DefaultCashRegister = "CASA LEI"

	pageSize         = 100
	maxFetchAttempts = 3
)

// Config holds configuration for the WME gateway client.
type Config struct {
	// BaseURL is the DataSnap bridge URL, up to and including the
	// server methods class (e.g. http://host:8089/datasnap/rest/TServerMethods).
	BaseURL string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// RequestRate is the request pacing in requests per second
	// (default: 4). The bridge degrades badly under burst load.
	RequestRate float64

	// CashRegister is the register name cash documents post to
	// (default: CASA LEI).
	CashRegister string
}

// Client submits documents to and fetches reference data from the
// WME bridge.
type Client struct {
	client   *http.Client
	baseURL  string
	register string
	limiter  *rate.Limiter
	now      func() time.Time
}

// NewClient creates a gateway client for the given bridge.
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestRate == 0 {
		cfg.RequestRate = DefaultRequestRate
	}
	if cfg.CashRegister == "" {
		cfg.CashRegister = DefaultCashRegister
	}

	return &Client{
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		register: cfg.CashRegister,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestRate), 1),
		now:      time.Now,
	}
}

// SubmitInvoice submits one invoice with its lines. Acceptance is
// detected by the bridge returning a document number: an OK response
// without one means the document was not created.
func (c *Client) SubmitInvoice(ctx context.Context, invoice *domain.Invoice, items []domain.InvoiceItem, settings domain.AgentSettings) (driven.SubmitResult, error) {
	lines := make([]invoiceLine, len(items))
	for i, item := range items {
		lines[i] = invoiceLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice.Float(),
			Unit:      item.UnitOfMeasure,
		}
	}

	docDate := invoice.CreatedAt.Format(wireDateLayout)
	request := invoiceImport{
		DocumentType: outgoingInvoiceType,
		WorkYear:     strconv.Itoa(invoice.CreatedAt.Year()),
		WorkMonth:    strconv.Itoa(int(invoice.CreatedAt.Month())),
		Documents: []invoiceDocument{{
			DocumentType: outgoingInvoiceType,
			Number:       strconv.Itoa(invoice.Number),
			Series:       settings.InvoiceSeries,
			Date:         docDate,
			Operation:    "A",
			Cancelled:    "N",
			ClientID:     invoice.PartnerID,
			LocationID:   invoice.LocationID,
			Agent:        settings.AgentMark,
			Currency:     defaultCurrency,
			Rate:         "1",
			Notes:        invoice.Notes,
			Items:        lines,
		}},
	}

	var result importResult
	if err := c.call(ctx, methodImportInvoice, request, &result); err != nil {
		return driven.SubmitResult{}, fmt.Errorf("submitting invoice %d: %w", invoice.Number, err)
	}

	if len(result.Documents) > 0 {
		doc := result.Documents[0]
		if number := strings.TrimSpace(doc.Number); number != "" {
			ref := strings.TrimSpace(strings.TrimSpace(doc.Series) + " " + number)
			return driven.SubmitResult{Accepted: true, RemoteRef: ref}, nil
		}
	}
	return driven.SubmitResult{
		Message: result.message("document was not created"),
	}, nil
}

// SubmitCollectionGroup submits the lines of one payment as a single
// cash document, distributing the value over the paid invoices.
func (c *Client) SubmitCollectionGroup(ctx context.Context, lines []domain.Collection, settings domain.AgentSettings) (driven.SubmitResult, error) {
	if len(lines) == 0 {
		return driven.SubmitResult{}, fmt.Errorf("submit collection group: %w", domain.ErrInvalidInput)
	}

	first := lines[0]
	var total domain.Money
	distribution := make([]valueDistribution, len(lines))
	for i, line := range lines {
		total += line.Amount
		distribution[i] = valueDistribution{
			Represents:    "Factura",
			InvoiceNumber: line.InvoiceNumber,
			InvoiceSeries: line.InvoiceSeries,
			Value:         line.Amount.Float(),
		}
	}

	docDate := first.CollectedAt.Format(wireDateLayout)
	request := cashImport{
		WorkYear:  strconv.Itoa(first.CollectedAt.Year()),
		WorkMonth: strconv.Itoa(int(first.CollectedAt.Month())),
		Documents: []cashDocument{{
			Source:   cashSource,
			Register: c.register,
			Date:     docDate,
			Agent:    settings.AgentMark,
			Currency: defaultCurrency,
			Transactions: []cashTransaction{{
				Kind:         cashTransactionKind,
				DocumentType: cashDocumentType,
				Series:       first.ReceiptSeries,
				Number:       first.ReceiptNumber,
				Subject:      cashSubject,
				Date:         docDate,
				Rate:         1,
				PartnerID:    first.PartnerID,
				Value:        total.Float(),
				Cancelled:    "NU",
				Distribution: distribution,
			}},
		}},
	}

	var result importResult
	if err := c.call(ctx, methodImportCash, request, &result); err != nil {
		return driven.SubmitResult{}, fmt.Errorf("submitting receipt %s %s: %w", first.ReceiptSeries, first.ReceiptNumber, err)
	}

	if strings.EqualFold(strings.TrimSpace(result.Result), "ok") || len(result.Errors) == 0 {
		ref := strings.TrimSpace(first.ReceiptSeries + " " + first.ReceiptNumber)
		return driven.SubmitResult{Accepted: true, RemoteRef: ref}, nil
	}
	return driven.SubmitResult{
		Message: result.message("cash document rejected"),
	}, nil
}

// FetchPartners retrieves all partners and their locations, page by
// page.
func (c *Client) FetchPartners(ctx context.Context, agentMark string) ([]domain.Partner, []domain.Location, error) {
	var partners []domain.Partner
	var locations []domain.Location

	for page := 1; ; page++ {
		filter := partnerFilter{
			AgentMark: agentMark,
			Paging:    requestPage(page),
		}
		feed, err := fetchWithRetry(ctx, func() (partnerFeed, error) {
			var feed partnerFeed
			err := c.call(ctx, methodGetPartners, filter, &feed)
			return feed, err
		})
		if err != nil {
			return nil, nil, fmt.Errorf("fetching partners: %w", err)
		}
		if len(feed.Partners) == 0 {
			break
		}

		for _, row := range feed.Partners {
			partner := row.toDomain()
			partners = append(partners, partner)
			for _, loc := range row.Locations {
				locations = append(locations, loc.toDomain(partner.ID))
			}
		}

		if !morePages(feed.Paging, page) {
			break
		}
	}

	return partners, locations, nil
}

// FetchProducts retrieves the sellable products, skipping inactive and
// blocked articles.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product

	for page := 1; ; page++ {
		filter := productFilter{
			Inactive: "NU",
			Blocked:  "NU",
			Paging:   requestPage(page),
		}
		feed, err := fetchWithRetry(ctx, func() (productFeed, error) {
			var feed productFeed
			err := c.call(ctx, methodGetProducts, filter, &feed)
			return feed, err
		})
		if err != nil {
			return nil, fmt.Errorf("fetching products: %w", err)
		}
		if len(feed.Products) == 0 {
			break
		}

		for _, row := range feed.Products {
			products = append(products, row.toDomain())
		}

		if !morePages(feed.Paging, page) {
			break
		}
	}

	return products, nil
}

// FetchBalances retrieves outstanding client balances. Settled rows
// (remainder zero or below) are dropped here so the local snapshot
// only carries collectable documents.
func (c *Client) FetchBalances(ctx context.Context, agentMark string) ([]domain.OutstandingBalance, error) {
	fetchedAt := c.now().UTC()
	var balances []domain.OutstandingBalance

	for page := 1; ; page++ {
		filter := balanceFilter{
			AgentMark: agentMark,
			Paging:    requestPage(page),
		}
		feed, err := fetchWithRetry(ctx, func() (balanceFeed, error) {
			var feed balanceFeed
			err := c.call(ctx, methodGetBalances, filter, &feed)
			return feed, err
		})
		if err != nil {
			return nil, fmt.Errorf("fetching balances: %w", err)
		}
		if len(feed.Balances) == 0 {
			break
		}

		for _, row := range feed.Balances {
			rest := parseWireAmount(row.Rest)
			if !rest.IsPositive() {
				continue
			}
			balances = append(balances, domain.OutstandingBalance{
				Key: domain.BalanceKey{
					PartnerID:    row.PartnerID,
					Series:       row.Series,
					Number:       row.Number,
					DocumentCode: row.DocumentCode,
					Date:         row.Date,
				}.Normalised(),
				PartnerName:  strings.TrimSpace(row.PartnerName),
				FiscalCode:   strings.TrimSpace(row.FiscalCode),
				DocumentType: strings.TrimSpace(row.DocumentType),
				Value:        parseWireAmount(row.Value),
				Rest:         rest,
				Term:         strings.TrimSpace(row.Term),
				Currency:     strings.TrimSpace(row.Currency),
				SyncedAt:     fetchedAt,
			})
		}

		if !morePages(feed.Paging, page) {
			break
		}
	}

	return balances, nil
}

// call POSTs one DataSnap request and decodes the response.
func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	// DataSnap exposes methods as quoted path segments.
	url := fmt.Sprintf("%s/%q", c.baseURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{method: method, code: resp.StatusCode, body: strings.TrimSpace(string(snippet))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}

// statusError is a non-200 bridge response.
type statusError struct {
	method string
	code   int
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("%s: bridge returned status %d", e.method, e.code)
	}
	return fmt.Sprintf("%s: bridge returned status %d: %s", e.method, e.code, e.body)
}

// retryable reports whether the failure is worth another attempt.
// Client errors are definitive; only server-side failures retry.
func (e *statusError) retryable() bool {
	return e.code >= http.StatusInternalServerError
}

// fetchWithRetry runs one page fetch under bounded exponential
// backoff. Submissions never go through here; only idempotent reads
// are safe to repeat.
func fetchWithRetry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil {
			var se *statusError
			if errors.As(err, &se) && !se.retryable() {
				return v, backoff.Permanent(err)
			}
		}
		return v, err
	}, backoff.WithBackOff(fetchBackOff()), backoff.WithMaxTries(maxFetchAttempts))
}

func fetchBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}

func requestPage(page int) *paging {
	return &paging{
		Page:    strconv.Itoa(page),
		PerPage: strconv.Itoa(pageSize),
	}
}
