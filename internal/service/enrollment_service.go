package service

import (
	"context"
	"errors"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

// EnrollmentService 选课写路径。所有变更在事务内完成，
// 提交成功后同步调用 OnEnrollmentChanged。
type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	Invalidator    *CacheInvalidator
	DB             *gorm.DB
}

func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	invalidator *CacheInvalidator,
	db *gorm.DB,
) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		Invalidator:    invalidator,
		DB:             db,
	}
}

func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID uint) (*model.Enrollment, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	if !course.Published {
		return nil, util.ErrCourseNotPublished
	}

	if _, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID); err == nil {
		return nil, util.ErrAlreadyEnrolled
	}

	enrollment := &model.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   model.EnrollmentEnrolled,
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.EnrollmentRepo.Create(tx, enrollment)
	})
	if err != nil {
		return nil, err
	}

	s.Invalidator.OnEnrollmentChanged(ctx, userID, courseID)
	return enrollment, nil
}

func (s *EnrollmentService) ListByUser(userID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListByUser(userID)
}

// CompleteCourse 标记结课。管理端或课时全部完成时的归档动作。
func (s *EnrollmentService) CompleteCourse(ctx context.Context, userID, courseID uint) error {
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotEnrolled
	}
	if err != nil {
		return err
	}
	if enrollment.Status == model.EnrollmentCompleted {
		return nil
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.EnrollmentRepo.UpdateStatus(tx, enrollment.ID, model.EnrollmentCompleted)
	})
	if err != nil {
		return err
	}

	s.Invalidator.OnEnrollmentChanged(ctx, userID, courseID)
	return nil
}

func (s *EnrollmentService) Withdraw(ctx context.Context, userID, courseID uint) error {
	enrollment, err := s.EnrollmentRepo.FindByUserAndCourse(userID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrNotEnrolled
	}
	if err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.EnrollmentRepo.Delete(tx, enrollment.ID)
	})
	if err != nil {
		return err
	}

	s.Invalidator.OnEnrollmentChanged(ctx, userID, courseID)
	return nil
}
