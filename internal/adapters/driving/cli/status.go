package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connectivity and sync state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusService == nil {
		return errors.New("status service not configured")
	}

	state, err := statusService.SyncState(context.Background())
	if err != nil {
		return fmt.Errorf("read sync state: %w", err)
	}

	if connectivity != nil {
		if connectivity.Online() {
			cmd.Println("Backend:   reachable")
		} else {
			cmd.Println("Backend:   offline")
		}
	}

	if state.Syncing {
		cmd.Println("Sync:      running")
	} else {
		cmd.Println("Sync:      idle")
	}

	cmd.Printf("Partners:  %s\n", formatSyncTime(state.PartnersSyncedAt))
	cmd.Printf("Products:  %s\n", formatSyncTime(state.ProductsSyncedAt))

	if state.FirstRun {
		cmd.Println()
		cmd.Println("No reference data yet. Run 'fieldbill sync' while connected.")
	}
	return nil
}

func formatSyncTime(t *time.Time) string {
	if t == nil {
		return "never synced"
	}
	return t.Local().Format("2006-01-02 15:04")
}
