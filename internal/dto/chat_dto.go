package dto

import "time"

type ChatSendDTO struct {
	UserID  uint   `json:"user_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type ChatMessageDTO struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatExchangeDTO is returned from a successful send: the confirmed student
// turn followed by the assistant's reply.
type ChatExchangeDTO struct {
	Student   ChatMessageDTO `json:"student"`
	Assistant ChatMessageDTO `json:"assistant"`
}
