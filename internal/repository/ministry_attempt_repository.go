package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ai-tutor-backend/internal/model"
)

type MinistryAttemptRepository struct {
	db *gorm.DB
}

func NewMinistryAttemptRepository(db *gorm.DB) *MinistryAttemptRepository {
	return &MinistryAttemptRepository{db: db}
}

func (r *MinistryAttemptRepository) Create(attempt *model.MinistryExamAttempt) error {
	if err := r.db.Create(attempt).Error; err != nil {
		return fmt.Errorf("create ministry attempt failed: %w", err)
	}
	return nil
}

// GetActive returns the user's open (not yet submitted) attempt on an exam.
func (r *MinistryAttemptRepository) GetActive(examID, userID string) (*model.MinistryExamAttempt, error) {
	var attempt model.MinistryExamAttempt
	err := r.db.Where("exam_id = ? AND user_id = ? AND is_completed = ?", examID, userID, false).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active ministry attempt failed: %w", err)
	}
	return &attempt, nil
}

func (r *MinistryAttemptRepository) GetByIDAndExam(attemptID, examID string) (*model.MinistryExamAttempt, error) {
	var attempt model.MinistryExamAttempt
	err := r.db.Where("id = ? AND exam_id = ?", attemptID, examID).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ministry attempt failed: %w", err)
	}
	return &attempt, nil
}

// ListByExamID returns attempts on an exam, optionally restricted to one
// user.
func (r *MinistryAttemptRepository) ListByExamID(examID, userID string) ([]model.MinistryExamAttempt, error) {
	q := r.db.Where("exam_id = ?", examID)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	var attempts []model.MinistryExamAttempt
	if err := q.Order("started_at DESC").Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("list ministry attempts failed: %w", err)
	}
	return attempts, nil
}

func (r *MinistryAttemptRepository) Save(attempt *model.MinistryExamAttempt) error {
	if err := r.db.Save(attempt).Error; err != nil {
		return fmt.Errorf("save ministry attempt failed: %w", err)
	}
	return nil
}

func (r *MinistryAttemptRepository) DeleteByUserID(userID string) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.MinistryExamAttempt{}).Error; err != nil {
		return fmt.Errorf("delete ministry attempts failed: %w", err)
	}
	return nil
}
