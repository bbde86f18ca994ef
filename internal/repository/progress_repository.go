package repository

import (
	"learnhub_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// Upsert 以 (user_id, lesson_id) 为冲突键写进度。
// completed_at 与 status 同进退：completed 时写入时间，否则清空。
func (r *ProgressRepository) Upsert(tx *gorm.DB, progress *model.LessonProgress) error {
	if progress.Status == model.ProgressCompleted && progress.CompletedAt == nil {
		now := time.Now()
		progress.CompletedAt = &now
	}
	if progress.Status != model.ProgressCompleted {
		progress.CompletedAt = nil
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "completed_at", "updated_at"}),
	}).Create(progress).Error
}

func (r *ProgressRepository) FindByUserAndLesson(userID, lessonID uint) (*model.LessonProgress, error) {
	var progress model.LessonProgress
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) ListByUserAndCourse(userID, courseID uint) ([]model.LessonProgress, error) {
	var progresses []model.LessonProgress
	err := r.DB.Where("user_id = ? AND course_id = ?", userID, courseID).
		Find(&progresses).Error
	return progresses, err
}

// CountCompletedInCourse 学生在某课程内已完成的课时数，结课判定用
func (r *ProgressRepository) CountCompletedInCourse(tx *gorm.DB, userID, courseID uint) (int64, error) {
	var count int64
	err := tx.Model(&model.LessonProgress{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, model.ProgressCompleted).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) CreateQuizAttempt(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *ProgressRepository) ListQuizAttempts(userID, lessonID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}
