package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// TutoringSession groups the back-and-forth between a student and the
// tutor. MaterialsUsed accumulates the IDs of every study material the
// retrieval step surfaced during the session.
type TutoringSession struct {
	ID            string         `gorm:"primaryKey;size:64" json:"id"`
	UserID        string         `gorm:"size:64;not null;index" json:"user_id"`
	Topic         string         `gorm:"size:128;not null" json:"topic"`
	Subject       string         `gorm:"size:128;not null;index" json:"subject"`
	Grade         string         `gorm:"size:32" json:"grade,omitempty"`
	Title         string         `gorm:"size:256" json:"title"`
	MaterialsUsed datatypes.JSON `json:"materials_used"`
	Rating        *int           `json:"rating,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// MaterialIDs returns the decoded MaterialsUsed list.
func (s *TutoringSession) MaterialIDs() []string {
	if len(s.MaterialsUsed) == 0 {
		return nil
	}
	var ids []string
	_ = json.Unmarshal(s.MaterialsUsed, &ids)
	return ids
}

// SetMaterialIDs replaces MaterialsUsed.
func (s *TutoringSession) SetMaterialIDs(ids []string) {
	if ids == nil {
		ids = []string{}
	}
	b, _ := json.Marshal(ids)
	s.MaterialsUsed = datatypes.JSON(b)
}
