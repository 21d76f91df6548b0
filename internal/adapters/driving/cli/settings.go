package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
)

var (
	settingsAgentName     string
	settingsAgentMark     string
	settingsInvoiceSeries string
	settingsInvoiceStart  int
	settingsInvoiceEnd    int
	settingsReceiptSeries string
	settingsReceiptStart  int
	settingsReceiptEnd    int
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change agent settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the agent settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change agent settings",
	Long: `Updates the agent identity and document number ranges. Only the
flags given are changed; everything else keeps its current value.`,
	RunE: runSettingsSet,
}

func init() {
	settingsSetCmd.Flags().StringVar(&settingsAgentName, "name", "", "agent name printed on documents")
	settingsSetCmd.Flags().StringVar(&settingsAgentMark, "mark", "", "backend agent mark used to filter feeds")
	settingsSetCmd.Flags().StringVar(&settingsInvoiceSeries, "invoice-series", "", "invoice series")
	settingsSetCmd.Flags().IntVar(&settingsInvoiceStart, "invoice-start", 0, "first invoice number of the allocated range")
	settingsSetCmd.Flags().IntVar(&settingsInvoiceEnd, "invoice-end", 0, "last invoice number of the allocated range")
	settingsSetCmd.Flags().StringVar(&settingsReceiptSeries, "receipt-series", "", "receipt series")
	settingsSetCmd.Flags().IntVar(&settingsReceiptStart, "receipt-start", 0, "next receipt number")
	settingsSetCmd.Flags().IntVar(&settingsReceiptEnd, "receipt-end", 0, "last receipt number of the allocated range")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	settings, err := settingsStore.Get(context.Background())
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	cmd.Printf("Agent name:     %s\n", orUnset(settings.AgentName))
	cmd.Printf("Agent mark:     %s\n", orUnset(settings.AgentMark))
	cmd.Printf("Invoice series: %s\n", orUnset(settings.InvoiceSeries))
	if settings.InvoiceNumberStart != 0 || settings.InvoiceNumberEnd != 0 {
		cmd.Printf("Invoice range:  %d-%d (next %d)\n",
			settings.InvoiceNumberStart, settings.InvoiceNumberEnd, settings.InvoiceNumberCurrent)
	} else {
		cmd.Println("Invoice range:  (unset)")
	}
	series := settings.ReceiptSeries
	if series == "" {
		series = domain.DefaultReceiptSeries + " (default)"
	}
	cmd.Printf("Receipt series: %s\n", series)
	if settings.ReceiptNumberCurrent != 0 {
		cmd.Printf("Receipt range:  next %d, last %d\n",
			settings.ReceiptNumberCurrent, settings.ReceiptNumberEnd)
	} else {
		cmd.Println("Receipt range:  (unset, timestamps used)")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, _ []string) error {
	if settingsStore == nil {
		return errors.New("settings store not configured")
	}

	ctx := context.Background()
	settings, err := settingsStore.Get(ctx)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		settings.AgentName = settingsAgentName
	}
	if flags.Changed("mark") {
		settings.AgentMark = settingsAgentMark
	}
	if flags.Changed("invoice-series") {
		settings.InvoiceSeries = settingsInvoiceSeries
	}
	if flags.Changed("invoice-start") {
		settings.InvoiceNumberStart = settingsInvoiceStart
	}
	if flags.Changed("invoice-end") {
		settings.InvoiceNumberEnd = settingsInvoiceEnd
	}
	if flags.Changed("receipt-series") {
		settings.ReceiptSeries = settingsReceiptSeries
	}
	if flags.Changed("receipt-start") {
		settings.ReceiptNumberCurrent = settingsReceiptStart
	}
	if flags.Changed("receipt-end") {
		settings.ReceiptNumberEnd = settingsReceiptEnd
	}

	if err := settingsStore.Save(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	cmd.Println("Settings saved.")
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}
