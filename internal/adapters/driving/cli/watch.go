package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldbill/fieldbill-cli/internal/logger"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor connectivity and auto-send queued documents",
	Long: `Keeps the connectivity monitor running and triggers an auto-send
cycle on an interval. Queued documents are pushed whenever the backend
is reachable; offline cycles are silent no-ops.

Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "every", 5*time.Minute, "auto-send cycle interval")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if autoSender == nil || connectivity == nil {
		return errors.New("sync services not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := connectivity.Start(ctx); err != nil {
			logger.Warn("connectivity monitor stopped: %v", err)
		}
	}()
	defer connectivity.Stop() //nolint:errcheck

	cmd.Printf("Watching; auto-send every %s. Press Ctrl-C to stop.\n", watchInterval)

	// Probe and drain immediately so a short run still sends.
	connectivity.Notify(ctx)
	runWatchCycle(ctx, cmd)

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cmd.Println("\nStopping.")
			return nil
		case <-ticker.C:
			runWatchCycle(ctx, cmd)
		}
	}
}

func runWatchCycle(ctx context.Context, cmd *cobra.Command) {
	result := autoSender.RunCycle(ctx)
	if result.Ran {
		printCycleResult(cmd, result)
		return
	}
	logger.Debug("auto-send cycle skipped (offline or already running)")
}
