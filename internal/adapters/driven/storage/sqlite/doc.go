// Package sqlite provides a unified SQLite-based implementation of the
// driven store interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation for field
// devices. It implements the store interfaces through a single database
// connection:
//
//   - InvoiceStore: locally created invoices and their lines
//   - CollectionStore: payment receipt lines and their groups
//   - BalanceStore: the outstanding balance snapshot
//   - ReferenceStore: partners, locations and products
//   - SyncStateStore: reference-data sync timestamps
//   - SettingsStore: agent identity and document number ranges
//
// # Schema
//
// The database schema is managed through versioned migrations stored in
// the migrations/ directory. Money columns hold integer hundredths so
// two-decimal amounts survive storage exactly.
//
// # Data Location
//
// By default, the database is stored at ~/.fieldbill/data/fieldbill.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
