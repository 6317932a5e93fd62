package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ai-tutor-backend/internal/model"
)

type ExamRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

func (r *ExamRepository) Create(exam *model.Exam) error {
	if err := r.db.Create(exam).Error; err != nil {
		return fmt.Errorf("create exam failed: %w", err)
	}
	return nil
}

func (r *ExamRepository) GetByID(id string) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.Where("id = ?", id).First(&exam).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get exam failed: %w", err)
	}
	return &exam, nil
}

// GetWithMinistryQuestions loads the exam together with its linked ministry
// questions.
func (r *ExamRepository) GetWithMinistryQuestions(id string) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.Preload("MinistryQuestions").Where("id = ?", id).First(&exam).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get exam with ministry questions failed: %w", err)
	}
	return &exam, nil
}

func (r *ExamRepository) List(subject, gradeLevel string, offset, limit int) ([]model.Exam, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	q := r.db.Model(&model.Exam{})
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}
	if gradeLevel != "" {
		q = q.Where("grade_level = ?", gradeLevel)
	}

	var exams []model.Exam
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&exams).Error; err != nil {
		return nil, fmt.Errorf("list exams failed: %w", err)
	}
	return exams, nil
}

func (r *ExamRepository) Save(exam *model.Exam) error {
	if err := r.db.Save(exam).Error; err != nil {
		return fmt.Errorf("save exam failed: %w", err)
	}
	return nil
}

// IncrementQuestionCount bumps total_questions after a question is added.
func (r *ExamRepository) IncrementQuestionCount(id string) error {
	if err := r.db.Model(&model.Exam{}).
		Where("id = ?", id).
		UpdateColumn("total_questions", gorm.Expr("total_questions + 1")).Error; err != nil {
		return fmt.Errorf("increment exam question count failed: %w", err)
	}
	return nil
}
