package model

import (
	"time"

	"gorm.io/gorm"
)

// StudentAnswer is the persisted record of one submission. Submitted holds
// the learner's raw answer serialized as JSON; immutable after creation.
type StudentAnswer struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	UserID      *uint          `json:"user_id,omitempty" gorm:"index"`
	QuestionID  uint           `json:"question_id" gorm:"not null;index"`
	Question    Question       `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	Submitted   string         `json:"submitted" gorm:"type:text;not null"`
	IsCorrect   bool           `json:"is_correct" gorm:"not null"`
	SubmittedAt time.Time      `json:"submitted_at" gorm:"autoCreateTime"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
