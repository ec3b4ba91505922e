package repository

import (
	"github.com/lephan/quokka/internal/model"
	"gorm.io/gorm"
)

type ChatRepository interface {
	Create(message *model.ChatMessage) error
	FindRecentByUser(userID uint, limit int) ([]model.ChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(message *model.ChatMessage) error {
	return r.db.Create(message).Error
}

func (r *chatRepository) FindRecentByUser(userID uint, limit int) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	query := r.db.Where("user_id = ?", userID).Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
