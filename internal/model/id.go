package model

import (
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a prefixed identifier such as "user_3f2a9c1d8b07".
func NewID(prefix string) string {
	u := uuid.New()
	return fmt.Sprintf("%s_%x", prefix, u[:6])
}
