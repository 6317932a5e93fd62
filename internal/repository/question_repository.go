package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ai-tutor-backend/internal/model"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	if err := r.db.Create(question).Error; err != nil {
		return fmt.Errorf("create question failed: %w", err)
	}
	return nil
}

func (r *QuestionRepository) GetByID(id string) (*model.Question, error) {
	var question model.Question
	if err := r.db.Where("id = ?", id).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get question failed: %w", err)
	}
	return &question, nil
}

func (r *QuestionRepository) ListByExamID(examID string) ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.Where("exam_id = ?", examID).Order("created_at ASC").Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list exam questions failed: %w", err)
	}
	return questions, nil
}

// ListEmbedded returns questions that carry an embedding, optionally
// filtered by subject, for retrieval.
func (r *QuestionRepository) ListEmbedded(subject string) ([]model.Question, error) {
	q := r.db.Where("embedding <> ''")
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}

	var questions []model.Question
	if err := q.Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list embedded questions failed: %w", err)
	}
	return questions, nil
}

func (r *QuestionRepository) Save(question *model.Question) error {
	if err := r.db.Save(question).Error; err != nil {
		return fmt.Errorf("save question failed: %w", err)
	}
	return nil
}
