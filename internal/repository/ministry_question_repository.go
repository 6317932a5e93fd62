package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ai-tutor-backend/internal/model"
)

// MinistryQuestionFilter narrows a ministry-question listing. Zero values
// mean "no filter".
type MinistryQuestionFilter struct {
	Subject         string
	Grade           string
	Year            int
	Session         string
	DifficultyLevel string
	Offset          int
	Limit           int
}

type MinistryQuestionRepository struct {
	db *gorm.DB
}

func NewMinistryQuestionRepository(db *gorm.DB) *MinistryQuestionRepository {
	return &MinistryQuestionRepository{db: db}
}

func (r *MinistryQuestionRepository) Create(question *model.MinistryQuestion) error {
	if err := r.db.Create(question).Error; err != nil {
		return fmt.Errorf("create ministry question failed: %w", err)
	}
	return nil
}

func (r *MinistryQuestionRepository) GetByID(id string) (*model.MinistryQuestion, error) {
	var question model.MinistryQuestion
	if err := r.db.Where("id = ?", id).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ministry question failed: %w", err)
	}
	return &question, nil
}

func (r *MinistryQuestionRepository) List(filter MinistryQuestionFilter) ([]model.MinistryQuestion, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	q := r.db.Model(&model.MinistryQuestion{})
	if filter.Subject != "" {
		q = q.Where("subject = ?", filter.Subject)
	}
	if filter.Grade != "" {
		q = q.Where("grade = ?", filter.Grade)
	}
	if filter.Year != 0 {
		q = q.Where("year = ?", filter.Year)
	}
	if filter.Session != "" {
		q = q.Where("session = ?", filter.Session)
	}
	if filter.DifficultyLevel != "" {
		q = q.Where("difficulty_level = ?", filter.DifficultyLevel)
	}

	var questions []model.MinistryQuestion
	if err := q.Order("created_at DESC").Offset(filter.Offset).Limit(limit).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list ministry questions failed: %w", err)
	}
	return questions, nil
}

func (r *MinistryQuestionRepository) ListByIDs(ids []string) ([]model.MinistryQuestion, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var questions []model.MinistryQuestion
	if err := r.db.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list ministry questions by ids failed: %w", err)
	}
	return questions, nil
}

func (r *MinistryQuestionRepository) Delete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&model.MinistryQuestion{}).Error; err != nil {
		return fmt.Errorf("delete ministry question failed: %w", err)
	}
	return nil
}
