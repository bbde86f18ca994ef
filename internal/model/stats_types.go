package model

import "time"

// StatsScope 仪表盘统计的作用域
type StatsScope string

const (
	ScopeGlobal  StatsScope = "global"
	ScopeStudent StatsScope = "student"
	ScopeCourse  StatsScope = "course"
)

// GlobalRollup 平台级汇总查询的结果行
type GlobalRollup struct {
	TotalUsers           int64 `json:"totalUsers"`
	TotalCourses         int64 `json:"totalCourses"`
	TotalLessons         int64 `json:"totalLessons"`
	TotalEnrollments     int64 `json:"totalEnrollments"`
	CompletedEnrollments int64 `json:"completedEnrollments"`
}

// StudentRollup 单个学生的汇总查询结果行
type StudentRollup struct {
	EnrolledCourses  int64 `json:"enrolledCourses"`
	CompletedCourses int64 `json:"completedCourses"`
	TotalLessons     int64 `json:"totalLessons"`
	CompletedLessons int64 `json:"completedLessons"`
}

// CourseRollup 单门课程的汇总查询结果行
type CourseRollup struct {
	TotalEnrollments     int64 `json:"totalEnrollments"`
	CompletedEnrollments int64 `json:"completedEnrollments"`
	TotalLessons         int64 `json:"totalLessons"`
	CompletedLessons     int64 `json:"completedLessons"`
}

// LessonCompletion 课程内单个课时的完成人数
type LessonCompletion struct {
	LessonID        uint   `json:"lessonId"`
	Title           string `json:"title"`
	SortOrder       int    `json:"sortOrder"`
	CompletionCount int64  `json:"completionCount"`
}

// RecentActivity 最近的课时完成记录
type RecentActivity struct {
	UserID      uint      `json:"userId"`
	UserName    string    `json:"userName"`
	CourseTitle string    `json:"courseTitle"`
	LessonTitle string    `json:"lessonTitle"`
	CompletedAt time.Time `json:"completedAt"`
}

// CourseStatEntry 按选课人数排序的课程条目
type CourseStatEntry struct {
	CourseID       uint    `json:"courseId"`
	Title          string  `json:"title"`
	Category       string  `json:"category"`
	StudentCount   int64   `json:"studentCount"`
	CompletionRate float64 `json:"completionRate"`
}

// DashboardStats 仪表盘统计视图。按作用域整体计算、整体缓存，
// 缓存中的值必须是计算当时聚合查询的完整结果，不允许出现部分更新。
// swagger:model DashboardStats
type DashboardStats struct {
	Scope       StatsScope `json:"scope"`
	GeneratedAt time.Time  `json:"generatedAt"`

	TotalUsers           int64 `json:"totalUsers,omitempty"`
	TotalCourses         int64 `json:"totalCourses,omitempty"`
	TotalLessons         int64 `json:"totalLessons"`
	TotalEnrollments     int64 `json:"totalEnrollments"`
	CompletedEnrollments int64 `json:"completedEnrollments"`
	EnrolledCourses      int64 `json:"enrolledCourses,omitempty"`
	CompletedCourses     int64 `json:"completedCourses,omitempty"`
	CompletedLessons     int64 `json:"completedLessons,omitempty"`

	// 完成率为 0-100，保留两位小数；分母为 0 时恒为 0
	CompletionRate       float64 `json:"completionRate"`
	LessonCompletionRate float64 `json:"lessonCompletionRate,omitempty"`

	RecentActivities []RecentActivity   `json:"recentActivities,omitempty"`
	CourseStats      []CourseStatEntry  `json:"courseStats,omitempty"`
	LessonBreakdown  []LessonCompletion `json:"lessonBreakdown,omitempty"`
}
