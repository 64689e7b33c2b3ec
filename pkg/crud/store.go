package crud

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"crudgrid/pkg/crud/filter"
)

// SettingsStore persists the durable state projection per (user, grid)
// pair. Writes are last-write-wins; concurrent saves are not coordinated
// at this layer.
type SettingsStore interface {
	// Load returns the record for (userID, gridName), nil when absent.
	Load(ctx context.Context, userID, gridName string) (*Record, error)

	// Save upserts the record.
	Save(ctx context.Context, rec Record) error

	// DeleteForUser removes all records of a user (user deletion cascade).
	DeleteForUser(ctx context.Context, userID string) error
}

// SearchStore keeps the transient search values per (user, grid) pair
// between requests. Values pass through filter.StorageValues before
// saving, so only declared fields ever reach the store.
type SearchStore interface {
	LoadSearch(ctx context.Context, userID, gridName string) (filter.Values, error)
	SaveSearch(ctx context.Context, userID, gridName string, vals filter.Values) error
	ClearSearch(ctx context.Context, userID, gridName string) error
}

// QueryProvider executes a built query: a result count for pagination and
// the current page's slice.
type QueryProvider interface {
	Count(ctx context.Context, q sq.SelectBuilder) (int64, error)
	Select(ctx context.Context, q sq.SelectBuilder, dest any) error
}
