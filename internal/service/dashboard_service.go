package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/pkg/cache"

	"go.uber.org/zap"
)

// 仪表盘缓存键。所有键共用 dashboard: 前缀，ClearAll 按前缀整体清除。
const (
	CacheKeyPrefix = "dashboard:"
	CacheKeyGlobal = CacheKeyPrefix + "global"

	recentActivityLimit = 10
	topCoursesLimit     = 6
)

// StudentCacheKey 学生维度仪表盘的缓存键
func StudentCacheKey(userID uint) string {
	return fmt.Sprintf("%sstudent:%d", CacheKeyPrefix, userID)
}

// CourseCacheKey 课程维度仪表盘的缓存键
func CourseCacheKey(courseID uint) string {
	return fmt.Sprintf("%scourse:%d", CacheKeyPrefix, courseID)
}

// StatsSource 聚合查询层的抽象，测试中用内存假实现替换数据库
type StatsSource interface {
	GlobalRollup(ctx context.Context) (*model.GlobalRollup, error)
	StudentRollup(ctx context.Context, userID uint) (*model.StudentRollup, error)
	CourseRollup(ctx context.Context, courseID uint) (*model.CourseRollup, error)
	LessonBreakdown(ctx context.Context, courseID uint) ([]model.LessonCompletion, error)
	RecentActivity(ctx context.Context, userID uint, limit int) ([]model.RecentActivity, error)
	TopCoursesByEnrollment(ctx context.Context, limit int) ([]model.CourseStatEntry, error)
	CompletionTimestamps(ctx context.Context, userID uint) ([]time.Time, error)
}

// DashboardService 仪表盘统计门面，调用方只与它交互。
// 命中缓存直接返回存储值；未命中时跑聚合查询并整体写入缓存。
type DashboardService struct {
	Stats StatsSource
	Cache cache.Store
	Log   *zap.Logger

	mu  sync.RWMutex
	cfg config.CacheConfig

	now func() time.Time
}

func NewDashboardService(stats StatsSource, store cache.Store, cfg config.CacheConfig, log *zap.Logger) *DashboardService {
	return &DashboardService{
		Stats: stats,
		Cache: store,
		cfg:   cfg,
		Log:   log,
		now:   time.Now,
	}
}

// ReloadCacheConfig 配置热加载时替换 TTL 策略，不影响进行中的请求
func (s *DashboardService) ReloadCacheConfig(cfg config.CacheConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *DashboardService) cacheConfig() config.CacheConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// GetGlobalStats 平台级仪表盘，TTL 默认 300 秒
func (s *DashboardService) GetGlobalStats(ctx context.Context) (*model.DashboardStats, error) {
	return s.remember(ctx, CacheKeyGlobal, s.cacheConfig().GlobalExpiry(), s.computeGlobal)
}

// GetStudentStats 学生维度仪表盘，TTL 默认 300 秒
func (s *DashboardService) GetStudentStats(ctx context.Context, userID uint) (*model.DashboardStats, error) {
	return s.remember(ctx, StudentCacheKey(userID), s.cacheConfig().StudentExpiry(), func(ctx context.Context) (*model.DashboardStats, error) {
		return s.computeStudent(ctx, userID)
	})
}

// GetCourseStats 课程维度仪表盘，TTL 默认 600 秒
func (s *DashboardService) GetCourseStats(ctx context.Context, courseID uint) (*model.DashboardStats, error) {
	return s.remember(ctx, CourseCacheKey(courseID), s.cacheConfig().CourseExpiry(), func(ctx context.Context) (*model.DashboardStats, error) {
		return s.computeCourse(ctx, courseID)
	})
}

// GetLearningStreak 连续学习天数。结果依赖当前时间，每次调用都重新计算，
// 不进缓存。
func (s *DashboardService) GetLearningStreak(ctx context.Context, userID uint) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cacheConfig().QueryTimeout())
	defer cancel()

	timestamps, err := s.Stats.CompletionTimestamps(ctx, userID)
	if err != nil {
		return 0, err
	}
	return LearningStreak(s.now(), timestamps), nil
}

// TopCourses 按选课人数排序的课程榜单，有界列表查询，直接透传
func (s *DashboardService) TopCourses(ctx context.Context, limit int) ([]model.CourseStatEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cacheConfig().QueryTimeout())
	defer cancel()
	return s.Stats.TopCoursesByEnrollment(ctx, limit)
}

// remember 统一的取值路径：缓存值整存整取，JSON 序列化。
// 返回的要么是不超过 TTL 的完整缓存值，要么是刚算好的新值，不存在半成品。
func (s *DashboardService) remember(ctx context.Context, key string, ttl time.Duration, compute func(ctx context.Context) (*model.DashboardStats, error)) (*model.DashboardStats, error) {
	payload, err := s.Cache.Remember(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		stats, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(stats)
	})
	if err != nil {
		return nil, err
	}

	var stats model.DashboardStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		// 缓存中出现无法解码的值，清掉并重算一次
		s.Log.Warn("discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		if ferr := s.Cache.Forget(ctx, key); ferr != nil {
			s.Log.Warn("failed to forget corrupt cache entry", zap.String("key", key), zap.Error(ferr))
		}
		return compute(ctx)
	}
	return &stats, nil
}

func (s *DashboardService) computeGlobal(ctx context.Context) (*model.DashboardStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cacheConfig().QueryTimeout())
	defer cancel()

	rollup, err := s.Stats.GlobalRollup(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.Stats.RecentActivity(ctx, 0, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	top, err := s.Stats.TopCoursesByEnrollment(ctx, topCoursesLimit)
	if err != nil {
		return nil, err
	}

	return &model.DashboardStats{
		Scope:                model.ScopeGlobal,
		GeneratedAt:          s.now(),
		TotalUsers:           rollup.TotalUsers,
		TotalCourses:         rollup.TotalCourses,
		TotalLessons:         rollup.TotalLessons,
		TotalEnrollments:     rollup.TotalEnrollments,
		CompletedEnrollments: rollup.CompletedEnrollments,
		CompletionRate:       CompletionRate(rollup.CompletedEnrollments, rollup.TotalEnrollments),
		RecentActivities:     recent,
		CourseStats:          top,
	}, nil
}

func (s *DashboardService) computeStudent(ctx context.Context, userID uint) (*model.DashboardStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cacheConfig().QueryTimeout())
	defer cancel()

	rollup, err := s.Stats.StudentRollup(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.Stats.RecentActivity(ctx, userID, recentActivityLimit)
	if err != nil {
		return nil, err
	}

	return &model.DashboardStats{
		Scope:                model.ScopeStudent,
		GeneratedAt:          s.now(),
		EnrolledCourses:      rollup.EnrolledCourses,
		CompletedCourses:     rollup.CompletedCourses,
		TotalLessons:         rollup.TotalLessons,
		CompletedLessons:     rollup.CompletedLessons,
		CompletionRate:       CompletionRate(rollup.CompletedCourses, rollup.EnrolledCourses),
		LessonCompletionRate: CompletionRate(rollup.CompletedLessons, rollup.TotalLessons),
		RecentActivities:     recent,
	}, nil
}

func (s *DashboardService) computeCourse(ctx context.Context, courseID uint) (*model.DashboardStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cacheConfig().QueryTimeout())
	defer cancel()

	rollup, err := s.Stats.CourseRollup(ctx, courseID)
	if err != nil {
		return nil, err
	}
	breakdown, err := s.Stats.LessonBreakdown(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return &model.DashboardStats{
		Scope:                model.ScopeCourse,
		GeneratedAt:          s.now(),
		TotalLessons:         rollup.TotalLessons,
		TotalEnrollments:     rollup.TotalEnrollments,
		CompletedEnrollments: rollup.CompletedEnrollments,
		CompletedLessons:     rollup.CompletedLessons,
		CompletionRate:       CompletionRate(rollup.CompletedEnrollments, rollup.TotalEnrollments),
		LessonBreakdown:      breakdown,
	}, nil
}
