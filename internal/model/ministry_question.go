package model

import (
	"time"

	"gorm.io/datatypes"
)

// MinistryQuestion is a past official exam question, tagged with the year
// and session ("first" or "second") it appeared in.
type MinistryQuestion struct {
	ID              string         `gorm:"primaryKey;size:64" json:"id"`
	Subject         string         `gorm:"size:128;not null;index" json:"subject"`
	Grade           string         `gorm:"size:32;not null;index" json:"grade"`
	Year            int            `gorm:"index" json:"year"`
	Session         string         `gorm:"size:16" json:"session"`
	QuestionText    string         `gorm:"type:text;not null" json:"question_text"`
	AnswerKey       string         `gorm:"type:text;not null" json:"answer_key"`
	QuestionType    string         `gorm:"size:32;default:multiple_choice" json:"question_type"`
	Options         datatypes.JSON `json:"options,omitempty"`
	CorrectOption   string         `gorm:"size:8" json:"correct_option,omitempty"`
	DifficultyLevel string         `gorm:"size:32;default:intermediate" json:"difficulty_level"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
