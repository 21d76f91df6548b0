package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var balancesCmd = &cobra.Command{
	Use:   "balances [partner-id]",
	Short: "Show outstanding balances a payment can be allocated to",
	Long: `Shows outstanding balances from the last balance sync, reduced by
payments already recorded locally. Fully covered documents are hidden
even before the backend has confirmed the payment.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBalances,
}

func init() {
	rootCmd.AddCommand(balancesCmd)
}

func runBalances(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	partnerID := ""
	if len(args) > 0 {
		partnerID = args[0]
	}

	balances, err := collectionService.Balances(context.Background(), partnerID)
	if err != nil {
		return fmt.Errorf("list balances: %w", err)
	}

	if len(balances) == 0 {
		cmd.Println("No outstanding balances.")
		return nil
	}

	for _, b := range balances {
		document := strings.TrimSpace(b.Key.Series + " " + b.Key.Number)
		cmd.Printf("%-12s %-14s %-12s due %-12s rest %10s  %s\n",
			b.Key.PartnerID, document, b.Key.Date, b.Term, b.Rest, b.PartnerName)
	}
	return nil
}
