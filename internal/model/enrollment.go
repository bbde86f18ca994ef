package model

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// Enrollment 用户与课程的选课关系，(user_id, course_id) 唯一
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID     uint             `gorm:"uniqueIndex:idx_user_course;not null" json:"userId"`
	CourseID   uint             `gorm:"uniqueIndex:idx_user_course;not null" json:"courseId"`
	Status     EnrollmentStatus `gorm:"type:enum('enrolled','completed');default:'enrolled'" json:"status"`
	EnrolledAt time.Time        `gorm:"default:CURRENT_TIMESTAMP(3)" json:"enrolledAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
