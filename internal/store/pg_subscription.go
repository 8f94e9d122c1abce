package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pgSubscriptionStore struct {
	pool *pgxpool.Pool
}

// NewPgSubscriptionStore returns a SubscriptionStore backed by PostgreSQL.
func NewPgSubscriptionStore(pool *pgxpool.Pool) SubscriptionStore {
	return &pgSubscriptionStore{pool: pool}
}

// FindSubscribers selects bare account IDs only. The account_id > 0
// condition excludes anonymous subscriptions at the query level, so the
// engine never sees them.
func (s *pgSubscriptionStore) FindSubscribers(ctx context.Context, channelID string, itemID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT account_id
		FROM subscriptions
		WHERE channel_id = $1 AND item_id = $2 AND account_id > 0
		ORDER BY account_id`, channelID, itemID)
	if err != nil {
		return nil, fmt.Errorf("find subscribers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subscriber id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
