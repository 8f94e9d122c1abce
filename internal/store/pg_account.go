package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifyhub/flagnotify/internal/domain"
)

type pgAccountStore struct {
	pool *pgxpool.Pool
}

// NewPgAccountStore returns an AccountStore backed by PostgreSQL.
func NewPgAccountStore(pool *pgxpool.Pool) AccountStore {
	return &pgAccountStore{pool: pool}
}

func (s *pgAccountStore) LoadAccounts(ctx context.Context, ids []int64) ([]domain.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(email, ''), active, preferred_locale
		FROM accounts
		WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0, len(ids))
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.Email, &a.Active, &a.PreferredLocale); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
