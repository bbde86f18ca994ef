package service

import (
	"context"

	"learnhub_backend/pkg/cache"

	"go.uber.org/zap"
)

// CacheInvalidator 暴露给写路径的缓存失效钩子。每个钩子只清除底层聚合
// 可能受影响的那几个键：清少了读到旧数据，清多了引发无谓的重算风暴。
// 写路径在同一次请求内、事务提交之后同步调用对应钩子。
//
// 删除失败不视为致命错误：最坏情况是旧值存活到 TTL 结束，记日志即可。
type CacheInvalidator struct {
	Cache cache.Store
	Log   *zap.Logger
}

func NewCacheInvalidator(store cache.Store, log *zap.Logger) *CacheInvalidator {
	return &CacheInvalidator{Cache: store, Log: log}
}

// OnEnrollmentChanged 选课新增/完成/退课后调用
func (i *CacheInvalidator) OnEnrollmentChanged(ctx context.Context, userID, courseID uint) {
	i.forget(ctx, CacheKeyGlobal, StudentCacheKey(userID), CourseCacheKey(courseID))
}

// OnLessonProgressChanged 课时进度变化（开始/完成/测验）后调用
func (i *CacheInvalidator) OnLessonProgressChanged(ctx context.Context, userID, courseID uint) {
	i.forget(ctx, CacheKeyGlobal, StudentCacheKey(userID), CourseCacheKey(courseID))
}

// OnCourseMutated 课程或课时的增删改后调用。不涉及单个学生，
// 学生维度的键不动。
func (i *CacheInvalidator) OnCourseMutated(ctx context.Context, courseID uint) {
	i.forget(ctx, CacheKeyGlobal, CourseCacheKey(courseID))
}

// ClearAll 运维用的整体重置，正常请求路径不得调用
func (i *CacheInvalidator) ClearAll(ctx context.Context) error {
	if err := i.Cache.ForgetPrefix(ctx, CacheKeyPrefix); err != nil {
		i.Log.Error("failed to clear dashboard cache", zap.Error(err))
		return err
	}
	i.Log.Info("dashboard cache cleared")
	return nil
}

func (i *CacheInvalidator) forget(ctx context.Context, keys ...string) {
	if err := i.Cache.Forget(ctx, keys...); err != nil {
		i.Log.Warn("cache invalidation failed, entries expire by TTL",
			zap.Strings("keys", keys), zap.Error(err))
	}
}
