package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driving"
)

var (
	collectPartnerID   string
	collectPartnerName string
	collectLines       []string
	collectStatuses    []string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Record and manage payment receipts",
}

var collectRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record one payment split across outstanding balances",
	Long: `Records one payment as a group of allocation lines, each paying
down a single outstanding document. The whole group is validated
against the effective balances first: one invalid line rejects the
entire payment and nothing is recorded.

Each --line takes the form series:number:document-code:date:amount,
matching a balance shown by the balances command.`,
	RunE: runCollectRecord,
}

var collectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded collections",
	RunE:  runCollectList,
}

var collectDeleteCmd = &cobra.Command{
	Use:   "delete [collection-id]",
	Short: "Delete a collection line that has not been accepted remotely",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectDelete,
}

func init() {
	collectRecordCmd.Flags().StringVar(&collectPartnerID, "partner", "", "partner ID (required)")
	collectRecordCmd.Flags().StringVar(&collectPartnerName, "partner-name", "", "partner name for the receipt")
	collectRecordCmd.Flags().StringArrayVar(&collectLines, "line", nil, "allocation as series:number:document-code:date:amount (repeatable)")
	_ = collectRecordCmd.MarkFlagRequired("partner")

	collectListCmd.Flags().StringSliceVar(&collectStatuses, "status", nil, "filter by status (pending, sending, sent, synced, failed)")

	collectCmd.AddCommand(collectRecordCmd)
	collectCmd.AddCommand(collectListCmd)
	collectCmd.AddCommand(collectDeleteCmd)
	rootCmd.AddCommand(collectCmd)
}

func runCollectRecord(cmd *cobra.Command, _ []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	lines, err := parseAllocationLines(collectPartnerID, collectLines)
	if err != nil {
		return err
	}

	groupID, err := collectionService.RecordGroup(context.Background(), driving.CreateCollectionGroupRequest{
		PartnerID:   collectPartnerID,
		PartnerName: collectPartnerName,
		Lines:       lines,
	})
	if err != nil {
		var allocErr *domain.AllocationError
		if errors.As(err, &allocErr) {
			cmd.PrintErrln("Payment rejected; nothing was recorded:")
			for _, line := range allocErr.Lines {
				cmd.PrintErrf("  %s\n", line.Error())
			}
			return errors.New("invalid allocation")
		}
		return fmt.Errorf("record payment: %w", err)
	}

	cmd.Printf("Payment recorded as group %s.\n", groupID)
	return nil
}

func runCollectList(cmd *cobra.Command, _ []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	statuses, err := parseStatuses(collectStatuses)
	if err != nil {
		return err
	}

	collections, err := collectionService.List(context.Background(), statuses...)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	if len(collections) == 0 {
		cmd.Println("No collections.")
		return nil
	}

	for _, c := range collections {
		document := strings.TrimSpace(c.InvoiceSeries + " " + c.InvoiceNumber)
		line := fmt.Sprintf("%-10s %-10s %10s  %s %s  receipt %s %s",
			c.GroupID, c.Status, c.Amount, document, c.DocumentDate, c.ReceiptSeries, c.ReceiptNumber)
		if c.ErrorMessage != "" {
			line += "  (" + c.ErrorMessage + ")"
		}
		cmd.Println(line)
	}
	return nil
}

func runCollectDelete(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	if err := collectionService.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}

	cmd.Println("Collection deleted.")
	return nil
}

// parseAllocationLines parses repeated series:number:code:date:amount
// flags into allocation lines keyed to the given partner.
func parseAllocationLines(partnerID string, raw []string) ([]domain.AllocationLine, error) {
	lines := make([]domain.AllocationLine, 0, len(raw))
	for _, entry := range raw {
		parts := strings.Split(entry, ":")
		if len(parts) != 5 {
			return nil, fmt.Errorf("invalid --line %q: expected series:number:document-code:date:amount", entry)
		}
		amount, err := domain.ParseMoney(parts[4])
		if err != nil {
			return nil, fmt.Errorf("invalid --line %q: %w", entry, err)
		}
		lines = append(lines, domain.AllocationLine{
			Key: domain.BalanceKey{
				PartnerID:    partnerID,
				Series:       parts[0],
				Number:       parts[1],
				DocumentCode: parts[2],
				Date:         parts[3],
			}.Normalised(),
			Amount: amount,
		})
	}
	return lines, nil
}
