package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetPut(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, store.Put(ctx, "k", []byte("v"), time.Minute))
	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("v"), 300*time.Second))

	// TTL 内仍可读
	now = now.Add(299 * time.Second)
	_, err := store.Get(ctx, "k")
	require.NoError(t, err)

	// 超过 TTL 后条目消失并被惰性清理
	now = now.Add(2 * time.Second)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("v"), 0))

	now = now.Add(24 * time.Hour)
	_, err := store.Get(ctx, "k")
	require.NoError(t, err)
}

func TestMemoryStoreRemember(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	computes := 0
	compute := func(ctx context.Context) ([]byte, error) {
		computes++
		return []byte("computed"), nil
	}

	val, err := store.Remember(ctx, "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, []byte("computed"), val)
	assert.Equal(t, 1, computes)

	// 命中缓存时不再执行计算
	val, err = store.Remember(ctx, "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, []byte("computed"), val)
	assert.Equal(t, 1, computes)
}

func TestMemoryStoreRememberComputeError(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	wantErr := errors.New("compute failed")

	_, err := store.Remember(ctx, "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	// 失败的计算不写缓存
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryStoreRememberRecomputesAfterExpiry(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()
	computes := 0

	compute := func(ctx context.Context) ([]byte, error) {
		computes++
		return []byte("v"), nil
	}

	_, err := store.Remember(ctx, "k", 300*time.Second, compute)
	require.NoError(t, err)

	now = now.Add(301 * time.Second)
	_, err = store.Remember(ctx, "k", 300*time.Second, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, computes)
}

func TestMemoryStoreForget(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, store.Put(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, store.Put(ctx, "c", []byte("3"), time.Minute))

	require.NoError(t, store.Forget(ctx, "a", "b", "never-existed"))

	_, err := store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = store.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryStoreForgetPrefix(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "dashboard:global", []byte("1"), time.Minute))
	require.NoError(t, store.Put(ctx, "dashboard:student:7", []byte("2"), time.Minute))
	require.NoError(t, store.Put(ctx, "session:abc", []byte("3"), time.Minute))

	require.NoError(t, store.ForgetPrefix(ctx, "dashboard:"))

	_, err := store.Get(ctx, "dashboard:global")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = store.Get(ctx, "dashboard:student:7")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = store.Get(ctx, "session:abc")
	assert.NoError(t, err)
}
