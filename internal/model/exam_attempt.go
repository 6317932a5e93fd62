package model

import (
	"time"

	"gorm.io/datatypes"
)

// ExamAttempt records one run through a standard exam. Answers maps
// question ID to the submitted answer text.
type ExamAttempt struct {
	ID               string            `gorm:"primaryKey;size:64" json:"id"`
	UserID           string            `gorm:"size:64;not null;index" json:"user_id"`
	ExamID           string            `gorm:"size:64;not null;index" json:"exam_id"`
	Exam             *Exam             `gorm:"foreignKey:ExamID" json:"-"`
	Answers          datatypes.JSONMap `json:"answers"`
	Score            float64           `json:"score"`
	IsCompleted      bool              `gorm:"default:false;index" json:"is_completed"`
	StartedAt        time.Time         `gorm:"autoCreateTime" json:"started_at"`
	SubmittedAt      *time.Time        `json:"submitted_at,omitempty"`
	TimeTakenSeconds int               `json:"time_taken_seconds,omitempty"`
}
