package service

import (
	"context"
	"errors"

	"learnhub_backend/internal/model"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"

	"gorm.io/gorm"
)

// CourseService 课程与课时的写路径。每次改动提交后同步触发
// OnCourseMutated，保证仪表盘在下一次读取时重算。
type CourseService struct {
	CourseRepo  *repository.CourseRepository
	Invalidator *CacheInvalidator
}

func NewCourseService(courseRepo *repository.CourseRepository, invalidator *CacheInvalidator) *CourseService {
	return &CourseService{
		CourseRepo:  courseRepo,
		Invalidator: invalidator,
	}
}

func (s *CourseService) CreateCourse(ctx context.Context, course *model.Course, creatorID uint) error {
	course.CreatedBy = creatorID
	if err := s.CourseRepo.Create(course); err != nil {
		return err
	}
	s.Invalidator.OnCourseMutated(ctx, course.ID)
	return nil
}

func (s *CourseService) GetCourse(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	return course, err
}

func (s *CourseService) ListCourses(page, limit int, category string, publishedOnly bool) ([]model.Course, int64, error) {
	return s.CourseRepo.List(page, limit, category, publishedOnly)
}

func (s *CourseService) UpdateCourse(ctx context.Context, course *model.Course, editorID uint, editorRole model.UserRole) error {
	existing, err := s.CourseRepo.FindByID(course.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrCourseNotFound
	}
	if err != nil {
		return err
	}
	if existing.CreatedBy != editorID && editorRole != model.Admin {
		return util.ErrPermissionDenied
	}

	existing.Title = course.Title
	existing.Description = course.Description
	existing.Category = course.Category
	existing.CoverURL = course.CoverURL
	existing.Published = course.Published

	if err := s.CourseRepo.Update(existing); err != nil {
		return err
	}
	s.Invalidator.OnCourseMutated(ctx, existing.ID)
	return nil
}

func (s *CourseService) DeleteCourse(ctx context.Context, id uint) error {
	if err := s.CourseRepo.Delete(id); err != nil {
		return err
	}
	s.Invalidator.OnCourseMutated(ctx, id)
	return nil
}

func (s *CourseService) AddLesson(ctx context.Context, lesson *model.Lesson) error {
	if _, err := s.CourseRepo.FindByID(lesson.CourseID); errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrCourseNotFound
	}
	if err := s.CourseRepo.CreateLesson(lesson); err != nil {
		return err
	}
	// 课时数量变化会影响课程和全局两级统计
	s.Invalidator.OnCourseMutated(ctx, lesson.CourseID)
	return nil
}

func (s *CourseService) ListLessons(courseID uint) ([]model.Lesson, error) {
	return s.CourseRepo.ListLessons(courseID)
}

func (s *CourseService) UpdateLesson(ctx context.Context, lesson *model.Lesson) error {
	existing, err := s.CourseRepo.FindLessonByID(lesson.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrLessonNotFound
	}
	if err != nil {
		return err
	}

	existing.Title = lesson.Title
	existing.Content = lesson.Content
	existing.SortOrder = lesson.SortOrder
	existing.Duration = lesson.Duration

	if err := s.CourseRepo.UpdateLesson(existing); err != nil {
		return err
	}
	s.Invalidator.OnCourseMutated(ctx, existing.CourseID)
	return nil
}

func (s *CourseService) DeleteLesson(ctx context.Context, lessonID uint) error {
	lesson, err := s.CourseRepo.FindLessonByID(lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrLessonNotFound
	}
	if err != nil {
		return err
	}
	if err := s.CourseRepo.DeleteLesson(lessonID); err != nil {
		return err
	}
	s.Invalidator.OnCourseMutated(ctx, lesson.CourseID)
	return nil
}
