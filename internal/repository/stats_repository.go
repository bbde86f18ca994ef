package repository

import (
	"context"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

// StatsRepository 仪表盘聚合查询层。每个汇总只允许一次数据库往返：
// 用条件聚合（SUM CASE WHEN）和外连接一次取齐，严禁对集合逐项发查询。
type StatsRepository struct {
	DB *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{DB: db}
}

// GlobalRollup 平台级汇总：标量子查询取各表总数，条件聚合取选课完成数
func (r *StatsRepository) GlobalRollup(ctx context.Context) (*model.GlobalRollup, error) {
	var row model.GlobalRollup
	err := r.DB.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL) AS total_users,
			(SELECT COUNT(*) FROM courses WHERE deleted_at IS NULL) AS total_courses,
			(SELECT COUNT(*) FROM lessons WHERE deleted_at IS NULL) AS total_lessons,
			COUNT(e.id) AS total_enrollments,
			COALESCE(SUM(CASE WHEN e.status = 'completed' THEN 1 ELSE 0 END), 0) AS completed_enrollments
		FROM enrollments e
		WHERE e.deleted_at IS NULL`).Scan(&row).Error
	if err != nil {
		return nil, util.NewAggregationError("global_rollup", err)
	}
	return &row, nil
}

// StudentRollup 单个学生的汇总。课时维度通过选课关联到课程课时表，
// 进度用左连接，未学过的课时不会把整行丢掉。
func (r *StatsRepository) StudentRollup(ctx context.Context, userID uint) (*model.StudentRollup, error) {
	var row model.StudentRollup
	err := r.DB.WithContext(ctx).Raw(`
		SELECT
			COUNT(DISTINCT e.course_id) AS enrolled_courses,
			COUNT(DISTINCT CASE WHEN e.status = 'completed' THEN e.course_id END) AS completed_courses,
			COUNT(DISTINCT l.id) AS total_lessons,
			COUNT(DISTINCT CASE WHEN lp.status = 'completed' THEN lp.lesson_id END) AS completed_lessons
		FROM enrollments e
		LEFT JOIN lessons l ON l.course_id = e.course_id AND l.deleted_at IS NULL
		LEFT JOIN lesson_progresses lp ON lp.lesson_id = l.id AND lp.user_id = e.user_id AND lp.deleted_at IS NULL
		WHERE e.user_id = ? AND e.deleted_at IS NULL`, userID).Scan(&row).Error
	if err != nil {
		return nil, util.NewAggregationError("student_rollup", err)
	}
	return &row, nil
}

// CourseRollup 单门课程的汇总。从 courses 出发全部左连接，
// 零课时、零选课的课程返回全零行而不是空结果。
func (r *StatsRepository) CourseRollup(ctx context.Context, courseID uint) (*model.CourseRollup, error) {
	var row model.CourseRollup
	err := r.DB.WithContext(ctx).Raw(`
		SELECT
			COUNT(DISTINCT e.user_id) AS total_enrollments,
			COUNT(DISTINCT CASE WHEN e.status = 'completed' THEN e.user_id END) AS completed_enrollments,
			COUNT(DISTINCT l.id) AS total_lessons,
			COUNT(DISTINCT CASE WHEN lp.status = 'completed' THEN lp.id END) AS completed_lessons
		FROM courses c
		LEFT JOIN enrollments e ON e.course_id = c.id AND e.deleted_at IS NULL
		LEFT JOIN lessons l ON l.course_id = c.id AND l.deleted_at IS NULL
		LEFT JOIN lesson_progresses lp ON lp.lesson_id = l.id AND lp.deleted_at IS NULL
		WHERE c.id = ? AND c.deleted_at IS NULL`, courseID).Scan(&row).Error
	if err != nil {
		return nil, util.NewAggregationError("course_rollup", err)
	}
	return &row, nil
}

// LessonBreakdown 课程内各课时的完成人数，按课时顺序返回。
// 左连接保证零完成的课时也出现在结果里。
func (r *StatsRepository) LessonBreakdown(ctx context.Context, courseID uint) ([]model.LessonCompletion, error) {
	var rows []model.LessonCompletion
	err := r.DB.WithContext(ctx).Raw(`
		SELECT
			l.id AS lesson_id,
			l.title,
			l.sort_order,
			COUNT(lp.id) AS completion_count
		FROM lessons l
		LEFT JOIN lesson_progresses lp ON lp.lesson_id = l.id AND lp.status = 'completed' AND lp.deleted_at IS NULL
		WHERE l.course_id = ? AND l.deleted_at IS NULL
		GROUP BY l.id, l.title, l.sort_order
		ORDER BY l.sort_order ASC, l.id ASC`, courseID).Scan(&rows).Error
	if err != nil {
		return nil, util.NewAggregationError("lesson_breakdown", err)
	}
	return rows, nil
}

// RecentActivity 最近完成的课时记录。userID 为 0 时取平台全量。
// 排序和截断都下推到数据库，不在应用层 fetch-all-then-slice。
func (r *StatsRepository) RecentActivity(ctx context.Context, userID uint, limit int) ([]model.RecentActivity, error) {
	sql := `
		SELECT
			lp.user_id,
			u.name AS user_name,
			c.title AS course_title,
			l.title AS lesson_title,
			lp.completed_at
		FROM lesson_progresses lp
		JOIN users u ON u.id = lp.user_id
		JOIN lessons l ON l.id = lp.lesson_id
		JOIN courses c ON c.id = l.course_id
		WHERE lp.status = 'completed' AND lp.completed_at IS NOT NULL AND lp.deleted_at IS NULL`
	args := []interface{}{}
	if userID != 0 {
		sql += " AND lp.user_id = ?"
		args = append(args, userID)
	}
	sql += " ORDER BY lp.completed_at DESC LIMIT ?"
	args = append(args, limit)

	var rows []model.RecentActivity
	if err := r.DB.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, util.NewAggregationError("recent_activity", err)
	}
	return rows, nil
}

// TopCoursesByEnrollment 按选课人数排序的课程榜单，完成率在库内算好
func (r *StatsRepository) TopCoursesByEnrollment(ctx context.Context, limit int) ([]model.CourseStatEntry, error) {
	var rows []model.CourseStatEntry
	err := r.DB.WithContext(ctx).Raw(`
		SELECT
			c.id AS course_id,
			c.title,
			c.category,
			COUNT(e.id) AS student_count,
			COALESCE(ROUND(SUM(CASE WHEN e.status = 'completed' THEN 1 ELSE 0 END) * 100.0 / NULLIF(COUNT(e.id), 0), 2), 0) AS completion_rate
		FROM courses c
		LEFT JOIN enrollments e ON e.course_id = c.id AND e.deleted_at IS NULL
		WHERE c.deleted_at IS NULL AND c.published = TRUE
		GROUP BY c.id, c.title, c.category
		ORDER BY student_count DESC, c.id ASC
		LIMIT ?`, limit).Scan(&rows).Error
	if err != nil {
		return nil, util.NewAggregationError("top_courses", err)
	}
	return rows, nil
}

// CompletionTimestamps 学生的课时完成时间，倒序，连续学习天数的输入
func (r *StatsRepository) CompletionTimestamps(ctx context.Context, userID uint) ([]time.Time, error) {
	var timestamps []time.Time
	err := r.DB.WithContext(ctx).
		Model(&model.LessonProgress{}).
		Where("user_id = ? AND status = ? AND completed_at IS NOT NULL", userID, model.ProgressCompleted).
		Order("completed_at DESC").
		Pluck("completed_at", &timestamps).Error
	if err != nil {
		return nil, util.NewAggregationError("completion_timestamps", err)
	}
	return timestamps, nil
}
