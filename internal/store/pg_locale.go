package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgLocaleStore struct {
	pool *pgxpool.Pool
}

// NewPgLocaleStore returns a LocaleStore backed by PostgreSQL.
func NewPgLocaleStore(pool *pgxpool.Pool) LocaleStore {
	return &pgLocaleStore{pool: pool}
}

func (s *pgLocaleStore) Get(ctx context.Context, locale, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, `
		SELECT value FROM locale_overrides
		WHERE locale = $1 AND key = $2`, locale, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load locale override: %w", err)
	}
	return value, true, nil
}
