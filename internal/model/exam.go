package model

import "time"

type Exam struct {
	ID                string             `gorm:"primaryKey;size:64" json:"id"`
	Title             string             `gorm:"size:256;not null" json:"title"`
	Subject           string             `gorm:"size:128;not null;index" json:"subject"`
	GradeLevel        string             `gorm:"size:32;index" json:"grade_level"`
	Description       string             `gorm:"type:text" json:"description,omitempty"`
	TotalQuestions    int                `json:"total_questions"`
	TotalTimeMinutes  int                `gorm:"default:60" json:"total_time_minutes"`
	PassingScore      float64            `gorm:"default:60" json:"passing_score"`
	Instructions      string             `gorm:"type:text" json:"instructions,omitempty"`
	MinistryQuestions []MinistryQuestion `gorm:"many2many:exam_ministry_questions" json:"ministry_questions,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}
