package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeShortAnswer    = "short_answer"
	QuestionTypeEssay          = "essay"
)

// Question belongs to an exam. Options holds the multiple-choice labels as a
// JSON list of {"key": "A", "text": "..."} objects. Embedding caches the
// vector of "question\n\nAnswer: answer" for retrieval.
type Question struct {
	ID              string         `gorm:"primaryKey;size:64" json:"id"`
	ExamID          string         `gorm:"size:64;index" json:"exam_id"`
	QuestionText    string         `gorm:"type:text;not null" json:"question_text"`
	AnswerText      string         `gorm:"type:text;not null" json:"answer_text"`
	Topic           string         `gorm:"size:128;not null" json:"topic"`
	Subject         string         `gorm:"size:128;not null;index" json:"subject"`
	QuestionType    string         `gorm:"size:32;default:multiple_choice" json:"question_type"`
	DifficultyLevel string         `gorm:"size:32;default:intermediate" json:"difficulty_level"`
	Options         datatypes.JSON `json:"options,omitempty"`
	CorrectOption   string         `gorm:"size:8" json:"correct_option,omitempty"`
	Embedding       string         `gorm:"type:text" json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (q *Question) EmbeddingVector() []float32 {
	return decodeEmbedding(q.Embedding)
}

func (q *Question) SetEmbedding(vec []float32) {
	q.Embedding = encodeEmbedding(vec)
}
