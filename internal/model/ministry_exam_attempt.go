package model

import (
	"time"

	"gorm.io/datatypes"
)

// MinistryExamAttempt holds per-question points (Scores) alongside the raw
// answers. AIFeedback keeps the grader verdicts for non-multiple-choice
// questions, keyed by question ID.
type MinistryExamAttempt struct {
	ID               string            `gorm:"primaryKey;size:64" json:"id"`
	UserID           string            `gorm:"size:64;not null;index" json:"user_id"`
	ExamID           string            `gorm:"size:64;not null;index" json:"exam_id"`
	Answers          datatypes.JSONMap `json:"answers"`
	Scores           datatypes.JSONMap `json:"scores"`
	TotalScore       float64           `json:"total_score"`
	MaxScore         float64           `json:"max_score"`
	AIFeedback       datatypes.JSONMap `json:"ai_feedback,omitempty"`
	IsCompleted      bool              `gorm:"default:false;index" json:"is_completed"`
	StartedAt        time.Time         `gorm:"autoCreateTime" json:"started_at"`
	SubmittedAt      *time.Time        `json:"submitted_at,omitempty"`
	TimeTakenSeconds int               `json:"time_taken_seconds,omitempty"`
}
