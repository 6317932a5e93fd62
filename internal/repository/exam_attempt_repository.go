package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ai-tutor-backend/internal/model"
)

type ExamAttemptRepository struct {
	db *gorm.DB
}

func NewExamAttemptRepository(db *gorm.DB) *ExamAttemptRepository {
	return &ExamAttemptRepository{db: db}
}

func (r *ExamAttemptRepository) Create(attempt *model.ExamAttempt) error {
	if err := r.db.Create(attempt).Error; err != nil {
		return fmt.Errorf("create exam attempt failed: %w", err)
	}
	return nil
}

func (r *ExamAttemptRepository) GetByIDAndUser(attemptID, examID, userID string) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := r.db.Where("id = ? AND exam_id = ? AND user_id = ?", attemptID, examID, userID).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get exam attempt failed: %w", err)
	}
	return &attempt, nil
}

// ListByUserID returns a user's attempts, newest submissions first, with an
// optional exam-subject filter.
func (r *ExamAttemptRepository) ListByUserID(userID, subject string, offset, limit int) ([]model.ExamAttempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	q := r.db.Model(&model.ExamAttempt{}).Where("exam_attempts.user_id = ?", userID)
	if subject != "" {
		q = q.Joins("JOIN exams ON exams.id = exam_attempts.exam_id").
			Where("exams.subject = ?", subject)
	}

	var attempts []model.ExamAttempt
	if err := q.Order("exam_attempts.started_at DESC").Offset(offset).Limit(limit).Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("list exam attempts failed: %w", err)
	}
	return attempts, nil
}

// ListCompletedByUserID returns finished attempts with their exam preloaded,
// for progress statistics.
func (r *ExamAttemptRepository) ListCompletedByUserID(userID string) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.db.Preload("Exam").
		Where("user_id = ? AND is_completed = ?", userID, true).
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("list completed exam attempts failed: %w", err)
	}
	return attempts, nil
}

func (r *ExamAttemptRepository) Save(attempt *model.ExamAttempt) error {
	if err := r.db.Save(attempt).Error; err != nil {
		return fmt.Errorf("save exam attempt failed: %w", err)
	}
	return nil
}

func (r *ExamAttemptRepository) DeleteByUserID(userID string) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.ExamAttempt{}).Error; err != nil {
		return fmt.Errorf("delete exam attempts failed: %w", err)
	}
	return nil
}
