package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifyhub/flagnotify/internal/domain"
)

type pgContentStore struct {
	pool *pgxpool.Pool
}

// NewPgContentStore returns a ContentStore backed by PostgreSQL.
func NewPgContentStore(pool *pgxpool.Pool) ContentStore {
	return &pgContentStore{pool: pool}
}

func (s *pgContentStore) LoadItem(ctx context.Context, id int64) (*domain.ContentItem, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, kind, title, published
		FROM content_items WHERE id = $1`, id)

	var item domain.ContentItem
	err := row.Scan(&item.ID, &item.Kind, &item.Title, &item.Published)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load content item: %w", err)
	}
	return &item, nil
}

// CanView consults the content store's access grants. A missing grant row
// means the account may not view the item.
func (s *pgContentStore) CanView(ctx context.Context, itemID, accountID int64) (bool, error) {
	var allowed bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM content_access
			WHERE item_id = $1 AND account_id = $2
		)`, itemID, accountID).Scan(&allowed)
	if err != nil {
		return false, fmt.Errorf("check view access: %w", err)
	}
	return allowed, nil
}
