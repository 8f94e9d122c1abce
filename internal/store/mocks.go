package store

import (
	"context"
	"sync"

	"github.com/notifyhub/flagnotify/internal/domain"
)

// Hand-written, in-memory implementations of the collaborator interfaces,
// used in unit tests. No mock-generation library needed. Error overrides
// are set in tests to simulate failure paths.

// MockContentStore holds content items and per-account view grants.
type MockContentStore struct {
	mu      sync.RWMutex
	items   map[int64]*domain.ContentItem
	denied  map[int64]map[int64]bool // itemID -> accountID -> denied
	LoadErr error
	ViewErr error
}

func NewMockContentStore() *MockContentStore {
	return &MockContentStore{
		items:  make(map[int64]*domain.ContentItem),
		denied: make(map[int64]map[int64]bool),
	}
}

func (m *MockContentStore) AddItem(item domain.ContentItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := item
	m.items[item.ID] = &clone
}

// DenyView withholds the item from the given account. By default every
// account may view every stored item.
func (m *MockContentStore) DenyView(itemID, accountID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.denied[itemID] == nil {
		m.denied[itemID] = make(map[int64]bool)
	}
	m.denied[itemID][accountID] = true
}

func (m *MockContentStore) LoadItem(_ context.Context, id int64) (*domain.ContentItem, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	clone := *item
	return &clone, nil
}

func (m *MockContentStore) CanView(_ context.Context, itemID, accountID int64) (bool, error) {
	if m.ViewErr != nil {
		return false, m.ViewErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.denied[itemID][accountID], nil
}

// MockSubscriptionStore maps (channel, item) to subscriber ID lists.
type MockSubscriptionStore struct {
	mu      sync.RWMutex
	subs    map[string]map[int64][]int64 // channelID -> itemID -> account IDs
	FindErr error
}

func NewMockSubscriptionStore() *MockSubscriptionStore {
	return &MockSubscriptionStore{subs: make(map[string]map[int64][]int64)}
}

func (m *MockSubscriptionStore) Subscribe(channelID string, itemID, accountID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs[channelID] == nil {
		m.subs[channelID] = make(map[int64][]int64)
	}
	m.subs[channelID][itemID] = append(m.subs[channelID][itemID], accountID)
}

func (m *MockSubscriptionStore) FindSubscribers(_ context.Context, channelID string, itemID int64) ([]int64, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Distinct, positive IDs only — mirrors the SQL query contract.
	seen := make(map[int64]bool)
	var ids []int64
	for _, id := range m.subs[channelID][itemID] {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

// MockAccountStore records every LoadAccounts call so tests can verify the
// engine's batch memory bound (call count and per-call argument sizes).
type MockAccountStore struct {
	mu       sync.RWMutex
	accounts map[int64]domain.Account
	Calls    [][]int64
	LoadErr  error
}

func NewMockAccountStore() *MockAccountStore {
	return &MockAccountStore{accounts: make(map[int64]domain.Account)}
}

func (m *MockAccountStore) AddAccount(a domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = a
}

func (m *MockAccountStore) LoadAccounts(_ context.Context, ids []int64) ([]domain.Account, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	m.mu.Lock()
	m.Calls = append(m.Calls, append([]int64(nil), ids...))
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []domain.Account
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok {
			accounts = append(accounts, a)
		}
	}
	return accounts, nil
}

// MockSettingsStore returns a fixed settings snapshot.
type MockSettingsStore struct {
	Settings    domain.RunSettings
	SnapshotErr error
}

func (m *MockSettingsStore) Snapshot(_ context.Context) (*domain.RunSettings, error) {
	if m.SnapshotErr != nil {
		return nil, m.SnapshotErr
	}
	clone := m.Settings
	clone.Channels = append([]domain.Channel(nil), m.Settings.Channels...)
	return &clone, nil
}

// MockLocaleStore is a (locale, key) -> value map.
type MockLocaleStore struct {
	mu        sync.RWMutex
	overrides map[string]map[string]string
	GetErr    error
}

func NewMockLocaleStore() *MockLocaleStore {
	return &MockLocaleStore{overrides: make(map[string]map[string]string)}
}

func (m *MockLocaleStore) Set(locale, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.overrides[locale] == nil {
		m.overrides[locale] = make(map[string]string)
	}
	m.overrides[locale][key] = value
}

func (m *MockLocaleStore) Get(_ context.Context, locale, key string) (string, bool, error) {
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.overrides[locale][key]
	return v, ok, nil
}
