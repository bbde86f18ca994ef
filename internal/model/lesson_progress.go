package model

import (
	"time"
)

type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
)

// LessonProgress 用户对单个课时的学习进度，(user_id, lesson_id) 唯一。
// 约束：status 为 completed 时 completed_at 必须有值，反之必须为空。
// swagger:model LessonProgress
type LessonProgress struct {
	BaseModel
	UserID      uint           `gorm:"uniqueIndex:idx_user_lesson;not null" json:"userId"`
	LessonID    uint           `gorm:"uniqueIndex:idx_user_lesson;not null" json:"lessonId"`
	CourseID    uint           `gorm:"index;not null" json:"courseId"`
	Status      ProgressStatus `gorm:"type:enum('not_started','in_progress','completed');default:'not_started'" json:"status"`
	CompletedAt *time.Time     `gorm:"index" json:"completedAt,omitempty"`
}

func (LessonProgress) TableName() string {
	return "lesson_progresses"
}

// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	UserID      uint       `gorm:"index;not null" json:"userId"`
	LessonID    uint       `gorm:"index;not null" json:"lessonId"`
	Score       float64    `gorm:"default:0" json:"score"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
