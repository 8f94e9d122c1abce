package store

import (
	"context"

	"github.com/notifyhub/flagnotify/internal/domain"
)

// The dispatch engine's external collaborators. Postgres implementations
// live in the pg_*.go files; tests use the hand-written in-memory mocks
// (mocks.go).

// ContentStore exposes the content-management system's entity storage and
// its per-recipient view permission check.
type ContentStore interface {
	// LoadItem returns domain.ErrItemNotFound when no item with the
	// given ID exists.
	LoadItem(ctx context.Context, id int64) (*domain.ContentItem, error)
	// CanView reports whether the account may view the item. Evaluated
	// per (account, item) pair at send time, never cached across runs.
	CanView(ctx context.Context, itemID, accountID int64) (bool, error)
}

// SubscriptionStore resolves the candidate recipient set for a channel.
type SubscriptionStore interface {
	// FindSubscribers returns the distinct account IDs subscribed to the
	// item via the given channel. Anonymous subscriptions (id <= 0) are
	// excluded in the query itself. Returns bare identifiers only; full
	// account records are loaded separately in batches.
	FindSubscribers(ctx context.Context, channelID string, itemID int64) ([]int64, error)
}

// AccountStore loads full account records for a batch of identifiers.
type AccountStore interface {
	LoadAccounts(ctx context.Context, ids []int64) ([]domain.Account, error)
}

// SettingsStore provides the run-scoped configuration snapshot: behavior
// flags, global default templates, and the ordered channel list.
type SettingsStore interface {
	// Snapshot reads all settings in one shot. Channels come back
	// ordered by their configured position, ascending; that order
	// decides which channel wins the dedup race when duplicate
	// suppression is on.
	Snapshot(ctx context.Context) (*domain.RunSettings, error)
}

// LocaleStore is the read-only locale-override lookup table.
type LocaleStore interface {
	// Get returns the override value for (locale, key) and whether one
	// exists. Absence is not an error: it means "no override at this
	// level" and the caller falls through the precedence chain.
	Get(ctx context.Context, locale, key string) (string, bool, error)
}
