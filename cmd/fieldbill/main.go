package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fieldbill/fieldbill-cli/internal/adapters/driven/config/file"
	"github.com/fieldbill/fieldbill-cli/internal/adapters/driven/gateway/wme"
	"github.com/fieldbill/fieldbill-cli/internal/adapters/driven/storage/sqlite"
	"github.com/fieldbill/fieldbill-cli/internal/adapters/driving/cli"
	"github.com/fieldbill/fieldbill-cli/internal/core/services"
	"github.com/fieldbill/fieldbill-cli/internal/events"
)

// version is injected at build time via -ldflags.
var version string

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewStore("")
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg := configStore.Config()

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open local database: %w", err)
	}
	defer store.Close() //nolint:errcheck

	gateway := wme.NewClient(wme.Config{BaseURL: cfg.BackendURL})
	probe := wme.NewProbe(cfg.ProbeURL)

	bus := events.NewBus()
	defer bus.Close()

	connectivity := services.NewConnectivity(probe, cfg.ProbeInterval())
	status := services.NewStatusService(store.SyncStateStore(), store.ReferenceStore())

	autoSend := services.NewAutoSend(
		store.InvoiceStore(),
		store.CollectionStore(),
		store.BalanceStore(),
		store.ReferenceStore(),
		store.SyncStateStore(),
		store.SettingsStore(),
		gateway,
		status,
		bus,
		connectivity.Online,
	)
	status.BindBusy(autoSend.Busy)
	connectivity.BindOnRestored(func() {
		autoSend.RunCycle(context.Background())
	})

	invoices := services.NewInvoices(
		store.InvoiceStore(),
		store.ReferenceStore(),
		store.SettingsStore(),
		bus,
	)
	collections := services.NewCollections(
		store.CollectionStore(),
		store.BalanceStore(),
		store.SettingsStore(),
		bus,
	)

	cli.SetServices(cli.Services{
		Invoices:     invoices,
		Collections:  collections,
		AutoSend:     autoSend,
		Connectivity: connectivity,
		Status:       status,
		Settings:     store.SettingsStore(),
	})
	cli.SetVersion(version)

	return cli.Execute()
}
