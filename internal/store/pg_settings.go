package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifyhub/flagnotify/internal/domain"
)

// Settings-table keys for the run-scoped behavior flags.
const (
	settingDebugMode         = "debug_mode"
	settingRetryOnFailure    = "retry_on_failure"
	settingPreventDuplicates = "prevent_duplicate_emails"
	settingDefaultSubject    = "default_subject"
	settingDefaultBody       = "default_body"
)

type pgSettingsStore struct {
	pool *pgxpool.Pool
}

// NewPgSettingsStore returns a SettingsStore backed by PostgreSQL.
func NewPgSettingsStore(pool *pgxpool.Pool) SettingsStore {
	return &pgSettingsStore{pool: pool}
}

// Snapshot reads the settings table and the channel list in one pass.
// Missing flag rows fall back to defaults: debug off, retry off, duplicate
// suppression ON (suppression is opt-out, matching the safest behavior).
func (s *pgSettingsStore) Snapshot(ctx context.Context) (*domain.RunSettings, error) {
	rows, err := s.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	settings := &domain.RunSettings{
		DefaultSubject:    values[settingDefaultSubject],
		DefaultBody:       values[settingDefaultBody],
		DebugMode:         values[settingDebugMode] == "1",
		RetryOnFailure:    values[settingRetryOnFailure] == "1",
		PreventDuplicates: values[settingPreventDuplicates] != "0",
	}

	channels, err := s.loadChannels(ctx)
	if err != nil {
		return nil, err
	}
	settings.Channels = channels

	return settings, nil
}

func (s *pgSettingsStore) loadChannels(ctx context.Context) ([]domain.Channel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, enabled, kinds, COALESCE(subject, ''), COALESCE(body, '')
		FROM channels
		ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("load channels: %w", err)
	}
	defer rows.Close()

	var channels []domain.Channel
	for rows.Next() {
		var ch domain.Channel
		if err := rows.Scan(&ch.ID, &ch.Enabled, &ch.Kinds, &ch.Subject, &ch.Body); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}
