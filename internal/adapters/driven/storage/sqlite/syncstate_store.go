package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldbill/fieldbill-cli/internal/core/domain"
	"github.com/fieldbill/fieldbill-cli/internal/core/ports/driven"
)

// syncStateStore implements driven.SyncStateStore.
type syncStateStore struct {
	store *Store
}

var _ driven.SyncStateStore = (*syncStateStore)(nil)

// Keys of the sync_state rows.
const (
	syncKeyPartners = "partners"
	syncKeyProducts = "products"
)

// Get retrieves the stored timestamps. Missing entries are nil.
func (s *syncStateStore) Get(ctx context.Context) (domain.SyncTimestamps, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT key, synced_at FROM sync_state")
	if err != nil {
		return domain.SyncTimestamps{}, fmt.Errorf("querying sync state: %w", err)
	}
	defer rows.Close()

	var stamps domain.SyncTimestamps
	for rows.Next() {
		var key string
		var at time.Time
		if err := rows.Scan(&key, &at); err != nil {
			return domain.SyncTimestamps{}, fmt.Errorf("scanning sync state: %w", err)
		}
		t := at
		switch key {
		case syncKeyPartners:
			stamps.Partners = &t
		case syncKeyProducts:
			stamps.Products = &t
		}
	}

	if err := rows.Err(); err != nil {
		return domain.SyncTimestamps{}, fmt.Errorf("iterating sync state: %w", err)
	}

	return stamps, nil
}

// Save stores or updates the timestamps. Nil entries are left as they
// are rather than cleared.
func (s *syncStateStore) Save(ctx context.Context, stamps domain.SyncTimestamps) error {
	save := func(key string, at *time.Time) error {
		if at == nil {
			return nil
		}
		_, err := s.store.db.ExecContext(ctx, `
			INSERT INTO sync_state (key, synced_at) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET synced_at = excluded.synced_at
		`, key, *at)
		if err != nil {
			return fmt.Errorf("saving sync state %s: %w", key, err)
		}
		return nil
	}

	if err := save(syncKeyPartners, stamps.Partners); err != nil {
		return err
	}
	return save(syncKeyProducts, stamps.Products)
}
