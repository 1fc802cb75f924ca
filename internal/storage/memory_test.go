package storage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emarzona/shortlinks/internal/storage"
)

func ptr(t time.Time) *time.Time { return &t }

func TestMemoryStorage_PutAndFind(t *testing.T) {
	ctx := context.Background()
	mem, _ := storage.CreateMemoryStorage()

	stored, err := mem.Put(ctx, storage.ShortLink{Code: "ROGE", TargetURL: "https://example.com/x", IsActive: true})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())

	for _, candidate := range []string{"ROGE", "roge", "RoGe"} {
		found, err := mem.FindResolvable(ctx, candidate, time.Now())
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/x", found.TargetURL)
	}

	_, err = mem.FindResolvable(ctx, "ZZZZ", time.Now())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = mem.Put(ctx, storage.ShortLink{ID: stored.ID, Code: "OTHER"})
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestMemoryStorage_FindResolvableSkipsInactive(t *testing.T) {
	ctx := context.Background()
	mem, _ := storage.CreateMemoryStorage()

	_, err := mem.Put(ctx, storage.ShortLink{Code: "OFF1", TargetURL: "https://example.com", IsActive: false})
	require.NoError(t, err)

	_, err = mem.FindResolvable(ctx, "off1", time.Now())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// inactive links are still visible to stats lookups
	found, err := mem.FindByCode(ctx, "off1")
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestMemoryStorage_TieBreak(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	mem, _ := storage.CreateMemoryStorage()

	_, _ = mem.Put(ctx, storage.ShortLink{ID: "a", Code: "dup", TargetURL: "https://old", IsActive: true, CreatedAt: now.Add(-2 * time.Hour)})
	_, _ = mem.Put(ctx, storage.ShortLink{ID: "b", Code: "DUP", TargetURL: "https://new", IsActive: true, CreatedAt: now.Add(-time.Hour)})
	_, _ = mem.Put(ctx, storage.ShortLink{ID: "c", Code: "Dup", TargetURL: "https://expired", IsActive: true,
		CreatedAt: now.Add(-time.Minute), ExpiresAt: ptr(now.Add(-time.Second))})

	found, err := mem.FindResolvable(ctx, "dup", now)
	require.NoError(t, err)
	assert.Equal(t, "b", found.ID, "newest resolvable record wins over a newer expired one")

	latest, err := mem.FindByCode(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "c", latest.ID)
}

func TestMemoryStorage_FindResolvableReturnsExpiredWhenNothingElse(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	mem, _ := storage.CreateMemoryStorage()

	_, _ = mem.Put(ctx, storage.ShortLink{Code: "OLD1", TargetURL: "https://example.com", IsActive: true,
		ExpiresAt: ptr(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))})

	found, err := mem.FindResolvable(ctx, "OLD1", now)
	require.NoError(t, err)
	assert.True(t, found.Expired(now))
}

func TestMemoryStorage_IncrementClick(t *testing.T) {
	ctx := context.Background()
	mem, _ := storage.CreateMemoryStorage()

	stored, err := mem.Put(ctx, storage.ShortLink{Code: "abc", TargetURL: "https://example.com", IsActive: true})
	require.NoError(t, err)

	const clicks = 200
	var wg sync.WaitGroup
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, mem.IncrementClick(ctx, stored.ID, time.Now()))
		}()
	}
	wg.Wait()

	found, err := mem.FindByCode(ctx, "abc")
	require.NoError(t, err)
	assert.EqualValues(t, clicks, found.TotalClicks)
	assert.NotNil(t, found.LastUsedAt)

	assert.ErrorIs(t, mem.IncrementClick(ctx, "missing", time.Now()), storage.ErrNotFound)
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	mem, _ := storage.CreateMemoryStorage()

	stored, _ := mem.Put(ctx, storage.ShortLink{Code: "abc", TargetURL: "https://example.com", IsActive: true})
	stored.TargetURL = "https://mutated"

	found, err := mem.FindResolvable(ctx, "abc", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", found.TargetURL)
}

func TestShortLink_ExpiryBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	atNow := storage.ShortLink{IsActive: true, ExpiresAt: ptr(now)}
	assert.False(t, atNow.Resolvable(now))
	assert.True(t, atNow.Expired(now))

	later := storage.ShortLink{IsActive: true, ExpiresAt: ptr(now.Add(time.Second))}
	assert.True(t, later.Resolvable(now))
	assert.False(t, later.Expired(now))

	inactive := storage.ShortLink{IsActive: false, ExpiresAt: ptr(now.Add(time.Hour))}
	assert.False(t, inactive.Resolvable(now))
}
