package model

// swagger:model Course
type Course struct {
	BaseModel
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:50;index" json:"category"`
	CoverURL    string `gorm:"size:255" json:"coverUrl"`
	CreatedBy   uint   `gorm:"index;not null" json:"createdBy"`
	Published   bool   `gorm:"default:false" json:"published"`

	// 选课人数为派生字段，由列表查询聚合填充，不落库
	StudentCount int64 `gorm:"-" json:"studentCount"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID  uint   `gorm:"index;not null" json:"courseId"`
	Title     string `gorm:"size:200;not null" json:"title"`
	Content   string `gorm:"type:longtext" json:"content"`
	SortOrder int    `gorm:"not null;default:0" json:"sortOrder"`
	Duration  int    `gorm:"default:0" json:"duration"` // 预计学习时长（分钟）
}

func (Lesson) TableName() string {
	return "lessons"
}
