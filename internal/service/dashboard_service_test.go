package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"learnhub_backend/internal/config"
	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStatsSource 内存中的聚合查询替身，记录每个查询被调用的次数
type fakeStatsSource struct {
	global  model.GlobalRollup
	student map[uint]model.StudentRollup
	course  map[uint]model.CourseRollup

	breakdown  []model.LessonCompletion
	recent     []model.RecentActivity
	top        []model.CourseStatEntry
	timestamps []time.Time

	err   error
	calls map[string]int
}

func newFakeStatsSource() *fakeStatsSource {
	return &fakeStatsSource{
		student: make(map[uint]model.StudentRollup),
		course:  make(map[uint]model.CourseRollup),
		calls:   make(map[string]int),
	}
}

func (f *fakeStatsSource) GlobalRollup(ctx context.Context) (*model.GlobalRollup, error) {
	f.calls["global"]++
	if f.err != nil {
		return nil, f.err
	}
	out := f.global
	return &out, nil
}

func (f *fakeStatsSource) StudentRollup(ctx context.Context, userID uint) (*model.StudentRollup, error) {
	f.calls["student"]++
	if f.err != nil {
		return nil, f.err
	}
	out := f.student[userID]
	return &out, nil
}

func (f *fakeStatsSource) CourseRollup(ctx context.Context, courseID uint) (*model.CourseRollup, error) {
	f.calls["course"]++
	if f.err != nil {
		return nil, f.err
	}
	out := f.course[courseID]
	return &out, nil
}

func (f *fakeStatsSource) LessonBreakdown(ctx context.Context, courseID uint) ([]model.LessonCompletion, error) {
	f.calls["breakdown"]++
	return f.breakdown, f.err
}

func (f *fakeStatsSource) RecentActivity(ctx context.Context, userID uint, limit int) ([]model.RecentActivity, error) {
	f.calls["recent"]++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeStatsSource) TopCoursesByEnrollment(ctx context.Context, limit int) ([]model.CourseStatEntry, error) {
	f.calls["top"]++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.top) > limit {
		return f.top[:limit], nil
	}
	return f.top, nil
}

func (f *fakeStatsSource) CompletionTimestamps(ctx context.Context, userID uint) ([]time.Time, error) {
	f.calls["timestamps"]++
	return f.timestamps, f.err
}

func newTestDashboard(stats *fakeStatsSource) (*DashboardService, *cache.MemoryStore) {
	store := cache.NewMemoryStore()
	svc := NewDashboardService(stats, store, config.CacheConfig{}, zap.NewNop())
	return svc, store
}

func TestGetGlobalStatsComputesAndCaches(t *testing.T) {
	stats := newFakeStatsSource()
	stats.global = model.GlobalRollup{
		TotalUsers:           120,
		TotalCourses:         8,
		TotalLessons:         64,
		TotalEnrollments:     10,
		CompletedEnrollments: 4,
	}
	stats.top = []model.CourseStatEntry{{CourseID: 1, Title: "Go 入门", StudentCount: 30}}
	svc, _ := newTestDashboard(stats)

	got, err := svc.GetGlobalStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.ScopeGlobal, got.Scope)
	assert.Equal(t, int64(120), got.TotalUsers)
	assert.Equal(t, int64(10), got.TotalEnrollments)
	assert.Equal(t, 40.0, got.CompletionRate)
	assert.Len(t, got.CourseStats, 1)

	// 第二次读走缓存，聚合查询不再执行
	again, err := svc.GetGlobalStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got.TotalUsers, again.TotalUsers)
	assert.Equal(t, got.GeneratedAt.Unix(), again.GeneratedAt.Unix())
	assert.Equal(t, 1, stats.calls["global"])
}

func TestGetStudentStatsRates(t *testing.T) {
	stats := newFakeStatsSource()
	stats.student[7] = model.StudentRollup{
		EnrolledCourses:  3,
		CompletedCourses: 1,
		TotalLessons:     30,
		CompletedLessons: 10,
	}
	svc, _ := newTestDashboard(stats)

	got, err := svc.GetStudentStats(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, model.ScopeStudent, got.Scope)
	assert.Equal(t, 33.33, got.CompletionRate)
	assert.Equal(t, 33.33, got.LessonCompletionRate)
}

// 未选任何课的学生必须拿到全零视图而不是错误
func TestGetStudentStatsEmpty(t *testing.T) {
	stats := newFakeStatsSource()
	svc, _ := newTestDashboard(stats)

	got, err := svc.GetStudentStats(context.Background(), 99)
	require.NoError(t, err)

	assert.Equal(t, int64(0), got.EnrolledCourses)
	assert.Equal(t, 0.0, got.CompletionRate)
	assert.Equal(t, 0.0, got.LessonCompletionRate)
}

func TestGetCourseStatsIncludesBreakdown(t *testing.T) {
	stats := newFakeStatsSource()
	stats.course[3] = model.CourseRollup{
		TotalEnrollments:     10,
		CompletedEnrollments: 4,
		TotalLessons:         2,
	}
	stats.breakdown = []model.LessonCompletion{
		{LessonID: 11, Title: "第一课", SortOrder: 1, CompletionCount: 8},
		{LessonID: 12, Title: "第二课", SortOrder: 2, CompletionCount: 0},
	}
	svc, _ := newTestDashboard(stats)

	got, err := svc.GetCourseStats(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, model.ScopeCourse, got.Scope)
	assert.Equal(t, 40.0, got.CompletionRate)
	// 无人完成的课时也要出现在列表里，计数为 0
	require.Len(t, got.LessonBreakdown, 2)
	assert.Equal(t, int64(0), got.LessonBreakdown[1].CompletionCount)
}

// 命中缓存期间底层数据变化不影响返回值；失效后重算拿到新值
func TestCourseStatsRecomputedAfterInvalidation(t *testing.T) {
	stats := newFakeStatsSource()
	stats.course[3] = model.CourseRollup{TotalEnrollments: 10, CompletedEnrollments: 4}
	svc, store := newTestDashboard(stats)
	invalidator := NewCacheInvalidator(store, zap.NewNop())
	ctx := context.Background()

	first, err := svc.GetCourseStats(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 40.0, first.CompletionRate)

	// 又一名学生完成课程，但缓存未失效前读到的仍是旧值
	stats.course[3] = model.CourseRollup{TotalEnrollments: 10, CompletedEnrollments: 5}
	stale, err := svc.GetCourseStats(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 40.0, stale.CompletionRate)
	assert.Equal(t, 1, stats.calls["course"])

	invalidator.OnEnrollmentChanged(ctx, 7, 3)

	fresh, err := svc.GetCourseStats(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 50.0, fresh.CompletionRate)
	assert.Equal(t, 2, stats.calls["course"])
}

func TestGetGlobalStatsPropagatesAggregationError(t *testing.T) {
	stats := newFakeStatsSource()
	stats.err = util.NewAggregationError("global_rollup", errors.New("connection refused"))
	svc, store := newTestDashboard(stats)

	_, err := svc.GetGlobalStats(context.Background())
	require.Error(t, err)
	assert.True(t, util.IsAggregationError(err))
	// 失败的计算不得污染缓存
	assert.Equal(t, 0, store.Len())
}

func TestRememberDiscardsCorruptEntry(t *testing.T) {
	stats := newFakeStatsSource()
	stats.global = model.GlobalRollup{TotalUsers: 5}
	svc, store := newTestDashboard(stats)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, CacheKeyGlobal, []byte("not-json"), time.Minute))

	got, err := svc.GetGlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.TotalUsers)

	// 坏条目已被清掉
	_, err = store.Get(ctx, CacheKeyGlobal)
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestGetLearningStreakNotCached(t *testing.T) {
	stats := newFakeStatsSource()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	stats.timestamps = []time.Time{
		time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC),
	}
	svc, store := newTestDashboard(stats)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	streak, err := svc.GetLearningStreak(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)

	// 每次调用都重新查询，结果不进缓存
	_, err = svc.GetLearningStreak(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.calls["timestamps"])
	assert.Equal(t, 0, store.Len())
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "dashboard:global", CacheKeyGlobal)
	assert.Equal(t, "dashboard:student:7", StudentCacheKey(7))
	assert.Equal(t, "dashboard:course:3", CourseCacheKey(3))
}
