package service

import (
	"context"
	"testing"
	"time"

	"learnhub_backend/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedDashboardKeys(t *testing.T, store *cache.MemoryStore, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, store.Put(context.Background(), k, []byte("{}"), time.Minute))
	}
}

func cached(store *cache.MemoryStore, key string) bool {
	_, err := store.Get(context.Background(), key)
	return err == nil
}

func TestOnEnrollmentChangedScope(t *testing.T) {
	store := cache.NewMemoryStore()
	inv := NewCacheInvalidator(store, zap.NewNop())
	seedDashboardKeys(t, store,
		CacheKeyGlobal,
		StudentCacheKey(7),
		StudentCacheKey(8),
		CourseCacheKey(3),
		CourseCacheKey(4),
	)

	inv.OnEnrollmentChanged(context.Background(), 7, 3)

	assert.False(t, cached(store, CacheKeyGlobal))
	assert.False(t, cached(store, StudentCacheKey(7)))
	assert.False(t, cached(store, CourseCacheKey(3)))

	// 无关学生和课程的缓存不受影响
	assert.True(t, cached(store, StudentCacheKey(8)))
	assert.True(t, cached(store, CourseCacheKey(4)))
}

func TestOnLessonProgressChangedScope(t *testing.T) {
	store := cache.NewMemoryStore()
	inv := NewCacheInvalidator(store, zap.NewNop())
	seedDashboardKeys(t, store, CacheKeyGlobal, StudentCacheKey(7), CourseCacheKey(3), StudentCacheKey(9))

	inv.OnLessonProgressChanged(context.Background(), 7, 3)

	assert.False(t, cached(store, CacheKeyGlobal))
	assert.False(t, cached(store, StudentCacheKey(7)))
	assert.False(t, cached(store, CourseCacheKey(3)))
	assert.True(t, cached(store, StudentCacheKey(9)))
}

func TestOnCourseMutatedLeavesStudents(t *testing.T) {
	store := cache.NewMemoryStore()
	inv := NewCacheInvalidator(store, zap.NewNop())
	seedDashboardKeys(t, store, CacheKeyGlobal, CourseCacheKey(3), StudentCacheKey(7))

	inv.OnCourseMutated(context.Background(), 3)

	assert.False(t, cached(store, CacheKeyGlobal))
	assert.False(t, cached(store, CourseCacheKey(3)))
	// 课程结构变化跟单个学生无关
	assert.True(t, cached(store, StudentCacheKey(7)))
}

func TestClearAllOnlyTouchesDashboardPrefix(t *testing.T) {
	store := cache.NewMemoryStore()
	inv := NewCacheInvalidator(store, zap.NewNop())
	seedDashboardKeys(t, store, CacheKeyGlobal, StudentCacheKey(7), CourseCacheKey(3))
	require.NoError(t, store.Put(context.Background(), "session:abc", []byte("x"), time.Minute))

	require.NoError(t, inv.ClearAll(context.Background()))

	assert.False(t, cached(store, CacheKeyGlobal))
	assert.False(t, cached(store, StudentCacheKey(7)))
	assert.False(t, cached(store, CourseCacheKey(3)))
	assert.True(t, cached(store, "session:abc"))
}
