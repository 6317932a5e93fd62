package repository

import (
	"fmt"

	"gorm.io/gorm"

	"ai-tutor-backend/internal/model"
)

type SessionMessageRepository struct {
	db *gorm.DB
}

func NewSessionMessageRepository(db *gorm.DB) *SessionMessageRepository {
	return &SessionMessageRepository{db: db}
}

func (r *SessionMessageRepository) Create(message *model.SessionMessage) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create session message failed: %w", err)
	}
	return nil
}

func (r *SessionMessageRepository) ListBySessionID(sessionID string, limit int) ([]model.SessionMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var messages []model.SessionMessage
	err := r.db.Where("session_id = ?", sessionID).
		Order("created_at ASC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list session messages failed: %w", err)
	}
	return messages, nil
}

func (r *SessionMessageRepository) DeleteBySessionID(sessionID string) error {
	if err := r.db.Where("session_id = ?", sessionID).Delete(&model.SessionMessage{}).Error; err != nil {
		return fmt.Errorf("delete session messages failed: %w", err)
	}
	return nil
}

func (r *SessionMessageRepository) DeleteByUserID(userID string) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.SessionMessage{}).Error; err != nil {
		return fmt.Errorf("delete user session messages failed: %w", err)
	}
	return nil
}
