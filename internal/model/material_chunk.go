package model

import (
	"encoding/json"
	"time"
)

// MaterialChunk is one overlapping slice of a study material together with
// its embedding. Embedding is stored as a JSON array of float32 for
// portability across SQL backends.
type MaterialChunk struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MaterialID string    `gorm:"size:64;not null;index" json:"material_id"`
	Seq        int       `gorm:"not null" json:"seq"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Subject    string    `gorm:"size:128;index" json:"subject"`
	Embedding  string    `gorm:"type:text" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *MaterialChunk) EmbeddingVector() []float32 {
	return decodeEmbedding(c.Embedding)
}

// SetEmbedding stores the embedding as JSON.
func (c *MaterialChunk) SetEmbedding(vec []float32) {
	c.Embedding = encodeEmbedding(vec)
}

func decodeEmbedding(raw string) []float32 {
	if raw == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(raw), &v)
	return v
}

func encodeEmbedding(vec []float32) string {
	if len(vec) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(vec)
	return string(b)
}
