package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is an in-process registry. Click increments happen under the
// write lock, so concurrent clicks are never lost.
type MemoryStorage struct {
	mu     sync.RWMutex
	byID   map[string]*ShortLink
	byCode map[string][]string
}

func CreateMemoryStorage() (*MemoryStorage, error) {
	return &MemoryStorage{
		byID:   make(map[string]*ShortLink),
		byCode: make(map[string][]string),
	}, nil
}

// Put stores a copy of the record. An empty id is filled with a UUID and a
// zero CreatedAt with the current time.
func (m *MemoryStorage) Put(_ context.Context, link ShortLink) (*ShortLink, error) {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[link.ID]; exists {
		return nil, ErrConflict
	}

	stored := link.Clone()
	m.byID[stored.ID] = stored
	key := NormalizeCode(stored.Code)
	m.byCode[key] = append(m.byCode[key], stored.ID)

	return stored.Clone(), nil
}

func (m *MemoryStorage) FindResolvable(_ context.Context, code string, now time.Time) (*ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *ShortLink
	for _, id := range m.byCode[NormalizeCode(code)] {
		link := m.byID[id]
		if !link.IsActive {
			continue
		}
		if Prefer(link, best, now) {
			best = link
		}
	}

	if best == nil {
		return nil, ErrNotFound
	}
	return best.Clone(), nil
}

// FindByCode returns the most recently created record for code, whatever its state.
func (m *MemoryStorage) FindByCode(_ context.Context, code string) (*ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *ShortLink
	for _, id := range m.byCode[NormalizeCode(code)] {
		link := m.byID[id]
		if latest == nil || link.CreatedAt.After(latest.CreatedAt) ||
			(link.CreatedAt.Equal(latest.CreatedAt) && link.ID > latest.ID) {
			latest = link
		}
	}

	if latest == nil {
		return nil, ErrNotFound
	}
	return latest.Clone(), nil
}

func (m *MemoryStorage) IncrementClick(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}

	link.TotalClicks++
	usedAt := at
	link.LastUsedAt = &usedAt
	return nil
}

func (m *MemoryStorage) PingContext(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStorage) has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byID[id]
	return ok
}
