package service

import (
	"context"
	"errors"
	"time"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

// LearningService 课时学习写路径：进度流转与测验记录。
// 每次提交后同步触发 OnLessonProgressChanged。
type LearningService struct {
	ProgressRepo   *repository.ProgressRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Invalidator    *CacheInvalidator
	DB             *gorm.DB
}

func NewLearningService(
	progressRepo *repository.ProgressRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	invalidator *CacheInvalidator,
	db *gorm.DB,
) *LearningService {
	return &LearningService{
		ProgressRepo:   progressRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		Invalidator:    invalidator,
		DB:             db,
	}
}

func (s *LearningService) StartLesson(ctx context.Context, userID, lessonID uint) error {
	lesson, err := s.findEnrolledLesson(userID, lessonID)
	if err != nil {
		return err
	}

	// 已完成的课时不允许回退到进行中
	if existing, err := s.ProgressRepo.FindByUserAndLesson(userID, lessonID); err == nil &&
		existing.Status == model.ProgressCompleted {
		return nil
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.ProgressRepo.Upsert(tx, &model.LessonProgress{
			UserID:   userID,
			LessonID: lessonID,
			CourseID: lesson.CourseID,
			Status:   model.ProgressInProgress,
		})
	})
	if err != nil {
		return err
	}

	s.Invalidator.OnLessonProgressChanged(ctx, userID, lesson.CourseID)
	return nil
}

// CompleteLesson 标记课时完成。课程内课时全部完成时，同一事务内
// 顺带把选课记录结课。
func (s *LearningService) CompleteLesson(ctx context.Context, userID, lessonID uint) error {
	lesson, err := s.findEnrolledLesson(userID, lessonID)
	if err != nil {
		return err
	}

	courseCompleted := false
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := s.ProgressRepo.Upsert(tx, &model.LessonProgress{
			UserID:      userID,
			LessonID:    lessonID,
			CourseID:    lesson.CourseID,
			Status:      model.ProgressCompleted,
			CompletedAt: &now,
		}); err != nil {
			return err
		}

		completed, err := s.ProgressRepo.CountCompletedInCourse(tx, userID, lesson.CourseID)
		if err != nil {
			return err
		}
		var totalLessons int64
		if err := tx.Model(&model.Lesson{}).
			Where("course_id = ?", lesson.CourseID).
			Count(&totalLessons).Error; err != nil {
			return err
		}

		if totalLessons > 0 && completed >= totalLessons {
			enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, lesson.CourseID)
			if err != nil {
				return err
			}
			if enrollment.Status != model.EnrollmentCompleted {
				if err := s.EnrollmentRepo.UpdateStatus(tx, enrollment.ID, model.EnrollmentCompleted); err != nil {
					return err
				}
				courseCompleted = true
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Invalidator.OnLessonProgressChanged(ctx, userID, lesson.CourseID)
	if courseCompleted {
		s.Invalidator.OnEnrollmentChanged(ctx, userID, lesson.CourseID)
	}
	return nil
}

func (s *LearningService) RecordQuizAttempt(ctx context.Context, userID, lessonID uint, score float64) (*model.QuizAttempt, error) {
	lesson, err := s.findEnrolledLesson(userID, lessonID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	attempt := &model.QuizAttempt{
		UserID:      userID,
		LessonID:    lessonID,
		Score:       score,
		CompletedAt: &now,
	}
	if err := s.ProgressRepo.CreateQuizAttempt(attempt); err != nil {
		return nil, err
	}

	s.Invalidator.OnLessonProgressChanged(ctx, userID, lesson.CourseID)
	return attempt, nil
}

func (s *LearningService) GetCourseProgress(userID, courseID uint) ([]model.LessonProgress, error) {
	return s.ProgressRepo.ListByUserAndCourse(userID, courseID)
}

func (s *LearningService) findEnrolledLesson(userID, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.CourseRepo.FindLessonByID(lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.EnrollmentRepo.FindByUserAndCourse(userID, lesson.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}
	return lesson, nil
}
