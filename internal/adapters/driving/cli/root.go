// Package cli implements the fieldbill command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driving"
	"github.com/fieldbill/fieldbill-cli/internal/logger"
)

// Services used by the commands. Wired by SetServices before Execute;
// commands guard against missing wiring so tests can run them in
// isolation.
var (
	invoiceService    driving.InvoiceService
	collectionService driving.CollectionService
	autoSender        driving.AutoSender
	connectivity      driving.ConnectivityMonitor
	statusService     driving.StatusService
	settingsStore     driven.SettingsStore
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "fieldbill",
	Short: "Offline-first invoicing and collections for field agents",
	Long: `fieldbill keeps invoices and payment receipts in a local queue
and reconciles them with the central system whenever connectivity
allows. Documents are never lost to a dead spot: they wait locally
and are pushed on the next sync cycle.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Services bundles the wired core services.
type Services struct {
	Invoices     driving.InvoiceService
	Collections  driving.CollectionService
	AutoSend     driving.AutoSender
	Connectivity driving.ConnectivityMonitor
	Status       driving.StatusService
	Settings     driven.SettingsStore
}

// SetServices injects the core services into the commands.
func SetServices(s Services) {
	invoiceService = s.Invoices
	collectionService = s.Collections
	autoSender = s.AutoSend
	connectivity = s.Connectivity
	statusService = s.Status
	settingsStore = s.Settings
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
