package repository

import (
	"fmt"

	"gorm.io/gorm"

	"ai-tutor-backend/internal/model"
)

type MaterialChunkRepository struct {
	db *gorm.DB
}

func NewMaterialChunkRepository(db *gorm.DB) *MaterialChunkRepository {
	return &MaterialChunkRepository{db: db}
}

func (r *MaterialChunkRepository) CreateBatch(chunks []model.MaterialChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	if err := r.db.Create(&chunks).Error; err != nil {
		return fmt.Errorf("create material chunks failed: %w", err)
	}
	return nil
}

// ListBySubject returns all chunks for a subject; empty subject means all
// chunks. The scan over every candidate is the retrieval index.
func (r *MaterialChunkRepository) ListBySubject(subject string) ([]model.MaterialChunk, error) {
	q := r.db.Model(&model.MaterialChunk{})
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}

	var chunks []model.MaterialChunk
	if err := q.Find(&chunks).Error; err != nil {
		return nil, fmt.Errorf("list material chunks failed: %w", err)
	}
	return chunks, nil
}

func (r *MaterialChunkRepository) DeleteByMaterialID(materialID string) error {
	if err := r.db.Where("material_id = ?", materialID).Delete(&model.MaterialChunk{}).Error; err != nil {
		return fmt.Errorf("delete material chunks failed: %w", err)
	}
	return nil
}
