package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"ai-tutor-backend/internal/model"
)

type StudyMaterialRepository struct {
	db *gorm.DB
}

func NewStudyMaterialRepository(db *gorm.DB) *StudyMaterialRepository {
	return &StudyMaterialRepository{db: db}
}

func (r *StudyMaterialRepository) Create(material *model.StudyMaterial) error {
	if err := r.db.Create(material).Error; err != nil {
		return fmt.Errorf("create study material failed: %w", err)
	}
	return nil
}

func (r *StudyMaterialRepository) GetByID(id string) (*model.StudyMaterial, error) {
	var material model.StudyMaterial
	if err := r.db.Where("id = ?", id).First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get study material failed: %w", err)
	}
	return &material, nil
}

// List returns materials, optionally filtered by subject and topic.
func (r *StudyMaterialRepository) List(subject, topic string, offset, limit int) ([]model.StudyMaterial, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	q := r.db.Model(&model.StudyMaterial{})
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}
	if topic != "" {
		q = q.Where("topic = ?", topic)
	}

	var materials []model.StudyMaterial
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("list study materials failed: %w", err)
	}
	return materials, nil
}

func (r *StudyMaterialRepository) Delete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&model.StudyMaterial{}).Error; err != nil {
		return fmt.Errorf("delete study material failed: %w", err)
	}
	return nil
}

func (r *StudyMaterialRepository) TitlesByIDs(ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}
	var materials []model.StudyMaterial
	if err := r.db.Select("id", "title").Where("id IN ?", ids).Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("query material titles failed: %w", err)
	}
	titles := make(map[string]string, len(materials))
	for _, m := range materials {
		titles[m.ID] = m.Title
	}
	return titles, nil
}
