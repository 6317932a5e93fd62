package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ai-tutor-backend/internal/model"
)

type TutoringSessionRepository struct {
	db *gorm.DB
}

func NewTutoringSessionRepository(db *gorm.DB) *TutoringSessionRepository {
	return &TutoringSessionRepository{db: db}
}

func (r *TutoringSessionRepository) Create(session *model.TutoringSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create tutoring session failed: %w", err)
	}
	return nil
}

func (r *TutoringSessionRepository) GetByIDAndUserID(sessionID, userID string) (*model.TutoringSession, error) {
	var session model.TutoringSession
	if err := r.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tutoring session failed: %w", err)
	}
	return &session, nil
}

func (r *TutoringSessionRepository) ListByUserID(userID, subject string, offset, limit int) ([]model.TutoringSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	q := r.db.Where("user_id = ?", userID)
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}

	var sessions []model.TutoringSession
	if err := q.Order("updated_at DESC").Offset(offset).Limit(limit).Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list tutoring sessions failed: %w", err)
	}
	return sessions, nil
}

func (r *TutoringSessionRepository) ListAllByUserID(userID string) ([]model.TutoringSession, error) {
	var sessions []model.TutoringSession
	if err := r.db.Where("user_id = ?", userID).Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list tutoring sessions failed: %w", err)
	}
	return sessions, nil
}

func (r *TutoringSessionRepository) Save(session *model.TutoringSession) error {
	if err := r.db.Save(session).Error; err != nil {
		return fmt.Errorf("save tutoring session failed: %w", err)
	}
	return nil
}

func (r *TutoringSessionRepository) DeleteByIDAndUserID(sessionID, userID string) error {
	if err := r.db.Where("id = ? AND user_id = ?", sessionID, userID).Delete(&model.TutoringSession{}).Error; err != nil {
		return fmt.Errorf("delete tutoring session failed: %w", err)
	}
	return nil
}

func (r *TutoringSessionRepository) DeleteByUserID(userID string) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.TutoringSession{}).Error; err != nil {
		return fmt.Errorf("delete tutoring sessions failed: %w", err)
	}
	return nil
}
