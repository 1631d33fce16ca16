package cache

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/compta_saas_backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTenantStore_SetGetClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTenantStore(0)

	_, err := store.GetCurrentTenant(ctx, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, store.SetCurrentTenant(ctx, "user-1", "tenant-a"))
	got, err := store.GetCurrentTenant(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", got)

	require.NoError(t, store.SetCurrentTenant(ctx, "user-1", "tenant-b"))
	got, err = store.GetCurrentTenant(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "tenant-b", got)

	_, err = store.GetCurrentTenant(ctx, "user-2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, store.ClearCurrentTenant(ctx, "user-1"))
	_, err = store.GetCurrentTenant(ctx, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryTenantStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryTenantStore(time.Minute)
	store.now = func() time.Time { return now }

	require.NoError(t, store.SetCurrentTenant(ctx, "user-1", "tenant-a"))

	now = now.Add(45 * time.Second)
	got, err := store.GetCurrentTenant(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "tenant-a", got, "read within ttl")

	// the read above slid the expiry
	now = now.Add(45 * time.Second)
	_, err = store.GetCurrentTenant(ctx, "user-1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.GetCurrentTenant(ctx, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNewRedisTenantStore_InvalidURL(t *testing.T) {
	_, err := NewRedisTenantStore(context.Background(), "://not-a-url", time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis url")
}
