package model

import "time"

type StudyMaterial struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id"`
	Title           string    `gorm:"size:256;not null" json:"title"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	Topic           string    `gorm:"size:128;not null;index" json:"topic"`
	Subject         string    `gorm:"size:128;not null;index" json:"subject"`
	Grade           string    `gorm:"size:32" json:"grade"`
	DifficultyLevel string    `gorm:"size:32;default:intermediate" json:"difficulty_level"`
	ChunkCount      int       `json:"chunk_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
