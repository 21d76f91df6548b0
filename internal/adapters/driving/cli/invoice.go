package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driving"
)

var (
	invoicePartnerID  string
	invoiceLocationID string
	invoiceNotes      string
	invoiceItems      []string
	invoiceStatuses   []string
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Create and manage queued invoices",
}

var invoiceCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an invoice in the local queue",
	Long: `Creates an invoice priced from the synced product catalogue. The
invoice is queued locally in status pending and submitted on the next
sync cycle.

Each --item takes the form product-id:quantity.`,
	RunE: runInvoiceCreate,
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued and sent invoices",
	RunE:  runInvoiceList,
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show [invoice-id]",
	Short: "Show an invoice with its lines",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceShow,
}

var invoiceCancelCmd = &cobra.Command{
	Use:   "cancel [invoice-id]",
	Short: "Return a sending invoice to the queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceCancel,
}

var invoiceDeleteCmd = &cobra.Command{
	Use:   "delete [invoice-id]",
	Short: "Delete an invoice that has not been accepted remotely",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceDelete,
}

func init() {
	invoiceCreateCmd.Flags().StringVar(&invoicePartnerID, "partner", "", "partner ID (required)")
	invoiceCreateCmd.Flags().StringVar(&invoiceLocationID, "location", "", "delivery location ID (required)")
	invoiceCreateCmd.Flags().StringVar(&invoiceNotes, "notes", "", "free-text notes")
	invoiceCreateCmd.Flags().StringArrayVar(&invoiceItems, "item", nil, "invoice line as product-id:quantity (repeatable)")
	_ = invoiceCreateCmd.MarkFlagRequired("partner")
	_ = invoiceCreateCmd.MarkFlagRequired("location")

	invoiceListCmd.Flags().StringSliceVar(&invoiceStatuses, "status", nil, "filter by status (pending, sending, sent, synced, failed)")

	invoiceCmd.AddCommand(invoiceCreateCmd)
	invoiceCmd.AddCommand(invoiceListCmd)
	invoiceCmd.AddCommand(invoiceShowCmd)
	invoiceCmd.AddCommand(invoiceCancelCmd)
	invoiceCmd.AddCommand(invoiceDeleteCmd)
	rootCmd.AddCommand(invoiceCmd)
}

func runInvoiceCreate(cmd *cobra.Command, _ []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}

	items, err := parseInvoiceItems(invoiceItems)
	if err != nil {
		return err
	}

	invoice, err := invoiceService.Create(context.Background(), driving.CreateInvoiceRequest{
		PartnerID:  invoicePartnerID,
		LocationID: invoiceLocationID,
		Notes:      invoiceNotes,
		Items:      items,
	})
	if err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}

	cmd.Printf("Invoice %d queued (%s, total %s).\n", invoice.Number, invoice.ID, invoice.TotalAmount)
	return nil
}

func runInvoiceList(cmd *cobra.Command, _ []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}

	statuses, err := parseStatuses(invoiceStatuses)
	if err != nil {
		return err
	}

	invoices, err := invoiceService.List(context.Background(), statuses...)
	if err != nil {
		return fmt.Errorf("list invoices: %w", err)
	}

	if len(invoices) == 0 {
		cmd.Println("No invoices.")
		return nil
	}

	for _, invoice := range invoices {
		line := fmt.Sprintf("%-8d %-10s %10s  %s", invoice.Number, invoice.Status, invoice.TotalAmount, invoice.PartnerName)
		if invoice.RemoteRef != "" {
			line += "  [" + invoice.RemoteRef + "]"
		}
		if invoice.ErrorMessage != "" {
			line += "  (" + invoice.ErrorMessage + ")"
		}
		cmd.Println(line)
	}
	return nil
}

func runInvoiceShow(cmd *cobra.Command, args []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}

	detail, err := invoiceService.Detail(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("show invoice: %w", err)
	}

	invoice := detail.Invoice
	cmd.Printf("Invoice %d  %s\n", invoice.Number, invoice.Status)
	cmd.Printf("Partner:  %s (%s)\n", invoice.PartnerName, invoice.PartnerID)
	cmd.Printf("Location: %s\n", invoice.LocationName)
	if invoice.Notes != "" {
		cmd.Printf("Notes:    %s\n", invoice.Notes)
	}
	if invoice.RemoteRef != "" {
		cmd.Printf("Remote:   %s\n", invoice.RemoteRef)
	}
	if invoice.ErrorMessage != "" {
		cmd.Printf("Error:    %s\n", invoice.ErrorMessage)
	}
	cmd.Println()
	for _, item := range detail.Items {
		cmd.Printf("  %-30s %8.2f %-5s x %10s = %10s\n",
			item.ProductName, item.Quantity, item.UnitOfMeasure, item.UnitPrice, item.TotalPrice)
	}
	cmd.Printf("Total: %s\n", invoice.TotalAmount)
	return nil
}

func runInvoiceCancel(cmd *cobra.Command, args []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}

	invoice, err := invoiceService.Cancel(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("cancel invoice: %w", err)
	}

	cmd.Printf("Invoice %d returned to queue.\n", invoice.Number)
	return nil
}

func runInvoiceDelete(cmd *cobra.Command, args []string) error {
	if invoiceService == nil {
		return errors.New("invoice service not configured")
	}

	if err := invoiceService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	cmd.Println("Invoice deleted.")
	return nil
}

// parseInvoiceItems parses repeated product-id:quantity flags.
func parseInvoiceItems(raw []string) ([]driving.CreateInvoiceItem, error) {
	items := make([]driving.CreateInvoiceItem, 0, len(raw))
	for _, entry := range raw {
		productID, qty, ok := strings.Cut(entry, ":")
		if !ok || strings.TrimSpace(productID) == "" {
			return nil, fmt.Errorf("invalid --item %q: expected product-id:quantity", entry)
		}
		quantity, err := strconv.ParseFloat(strings.TrimSpace(qty), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --item %q: bad quantity: %w", entry, err)
		}
		items = append(items, driving.CreateInvoiceItem{
			ProductID: strings.TrimSpace(productID),
			Quantity:  quantity,
		})
	}
	return items, nil
}

// parseStatuses maps --status values strictly; unknown values are an
// input error rather than falling back to pending.
func parseStatuses(raw []string) ([]domain.DocumentStatus, error) {
	statuses := make([]domain.DocumentStatus, 0, len(raw))
	for _, s := range raw {
		status := domain.DocumentStatus(strings.ToLower(strings.TrimSpace(s)))
		switch status {
		case domain.StatusPending, domain.StatusSending, domain.StatusSent, domain.StatusSynced, domain.StatusFailed:
			statuses = append(statuses, status)
		default:
			return nil, fmt.Errorf("unknown status %q", s)
		}
	}
	return statuses, nil
}
