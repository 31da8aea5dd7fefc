package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/PratikDhanave/appstack-bridge/internal/models"
)

// MemoryStore keeps the journal in process. It backs local runs without
// DB_URL and the handler tests.
type MemoryStore struct {
	mu       sync.RWMutex
	tenants  map[string]models.TenantConfig
	events   map[string]map[string]models.JournalEvent // tenant -> event id -> event
	failures map[string][]models.Failure // tenant -> oldest first
}

// maxFailuresPerTenant matches the largest page /journal/failures serves.
const maxFailuresPerTenant = 500

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-process journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenants:  make(map[string]models.TenantConfig),
		events:   make(map[string]map[string]models.JournalEvent),
		failures: make(map[string][]models.Failure),
	}
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close() {}

func (m *MemoryStore) UpsertConfig(_ context.Context, cfg models.TenantConfig) (string, error) {
	if cfg.TenantID == "" {
		return "", errors.New("tenantID required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.tenants[cfg.TenantID]; ok {
		cfg.AppstackID = prev.AppstackID
		cfg.AppleAdsEnabled = prev.AppleAdsEnabled
	} else {
		cfg.AppstackID = uuid.NewString()
	}
	m.tenants[cfg.TenantID] = cfg
	return cfg.AppstackID, nil
}

func (m *MemoryStore) TenantConfig(_ context.Context, tenantID string) (models.TenantConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.tenants[tenantID]
	if !ok {
		return models.TenantConfig{}, ErrTenantNotConfigured
	}
	return cfg, nil
}

func (m *MemoryStore) SetAppleAds(_ context.Context, tenantID string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.tenants[tenantID]
	if !ok {
		return ErrTenantNotConfigured
	}
	cfg.AppleAdsEnabled = enabled
	m.tenants[tenantID] = cfg
	return nil
}

func (m *MemoryStore) InsertEvent(_ context.Context, ev models.JournalEvent) (bool, error) {
	if ev.TenantID == "" || ev.EventID == "" || ev.EventType == "" {
		return false, errors.New("tenantID/eventID/eventType required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	byID, ok := m.events[ev.TenantID]
	if !ok {
		byID = make(map[string]models.JournalEvent)
		m.events[ev.TenantID] = byID
	}
	if _, dup := byID[ev.EventID]; dup {
		return false, nil
	}
	byID[ev.EventID] = ev
	return true, nil
}

func (m *MemoryStore) CountEvents(_ context.Context, tenantID, eventType string, from, to time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, ev := range m.events[tenantID] {
		if ev.EventType != eventType {
			continue
		}
		if !ev.Timestamp.Before(from) && ev.Timestamp.Before(to) {
			n++
		}
	}
	return n, nil
}

// InsertFailure keeps the newest maxFailuresPerTenant failures per tenant.
func (m *MemoryStore) InsertFailure(_ context.Context, f models.Failure) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := append(m.failures[f.TenantID], f)
	if over := len(list) - maxFailuresPerTenant; over > 0 {
		list = append([]models.Failure(nil), list[over:]...)
	}
	m.failures[f.TenantID] = list
	return nil
}

func (m *MemoryStore) RecentFailures(_ context.Context, tenantID string, limit int) ([]models.Failure, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.failures[tenantID]
	out := make([]models.Failure, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, list[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
