package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleStudent   = "student"
	RoleAssistant = "assistant"
)

// ChatMessage is one confirmed conversation turn. Pending optimistic echoes
// live only in the chat service's in-memory conversation and are never
// persisted.
type ChatMessage struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `json:"user_id" gorm:"not null;index"`
	Role      string         `json:"role" gorm:"not null"` // student, assistant
	Content   string         `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
