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

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync queued documents and reference data now",
	Long: `Runs one full synchronisation cycle against the central system:
refreshes partners, products and outstanding balances, then submits
every queued invoice and payment receipt.

Fails immediately when the backend is unreachable or a sync cycle is
already running.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if autoSender == nil {
		return errors.New("sync service not configured")
	}

	cmd.Println("Syncing...")

	result, err := autoSender.SyncNow(context.Background())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOffline):
			return errors.New("backend not reachable; documents stay queued locally")
		case errors.Is(err, domain.ErrSyncInProgress):
			return errors.New("a sync cycle is already running")
		default:
			return fmt.Errorf("sync failed: %w", err)
		}
	}

	printCycleResult(cmd, result)
	return nil
}

func printCycleResult(cmd *cobra.Command, result driving.CycleResult) {
	if !result.Ran {
		cmd.Println("Nothing to do.")
		return
	}

	cmd.Printf("Invoices sent: %d\n", result.InvoicesSent)
	cmd.Printf("Collections processed: %d\n", result.CollectionsProcessed)
	if len(result.PartialFailures) > 0 {
		cmd.Printf("Stages with failures: %s\n", strings.Join(result.PartialFailures, ", "))
	} else {
		cmd.Println("All stages completed.")
	}
}
