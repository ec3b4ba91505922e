package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lephan/quokka/internal/dto"
	"github.com/lephan/quokka/internal/model"
	"github.com/lephan/quokka/internal/repository"
	"github.com/rs/zerolog/log"
)

// ErrSendInFlight is returned when a user already has an unresolved send.
// Sends are serialized per conversation; there is never more than one
// pending echo.
var ErrSendInFlight = errors.New("a chat message is already being sent")

const (
	messagePending   = "pending"
	messageConfirmed = "confirmed"

	// storedHistoryLimit bounds how many persisted turns seed a cold
	// conversation.
	storedHistoryLimit = 50
)

// chatEntry is one turn plus its confirmation state. Pending entries are the
// optimistic local echo; they are either confirmed in place or removed on
// failure, never left behind.
type chatEntry struct {
	ID        string
	Role      string
	Content   string
	Timestamp time.Time
	Status    string
}

type conversation struct {
	mu       sync.Mutex
	messages []chatEntry
	sending  bool
}

type ChatService interface {
	Send(ctx context.Context, userID uint, content string) (*dto.ChatExchangeDTO, error)
	History(userID uint) []dto.ChatMessageDTO
}

type chatService struct {
	mu            sync.Mutex
	conversations map[uint]*conversation
	chatRepo      repository.ChatRepository
	tutor         TutorService
}

func NewChatService(chatRepo repository.ChatRepository, tutor TutorService) ChatService {
	return &chatService{
		conversations: make(map[uint]*conversation),
		chatRepo:      chatRepo,
		tutor:         tutor,
	}
}

func (s *chatService) conversationFor(userID uint) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[userID]
	if !ok {
		conv = &conversation{messages: s.loadStoredTurns(userID)}
		s.conversations[userID] = conv
	}
	return conv
}

// loadStoredTurns seeds a cold conversation from the persisted history, all
// confirmed. Load failures degrade to an empty conversation.
func (s *chatService) loadStoredTurns(userID uint) []chatEntry {
	stored, err := s.chatRepo.FindRecentByUser(userID, storedHistoryLimit)
	if err != nil {
		log.Warn().Err(err).Uint("userID", userID).Msg("ChatService: could not load stored conversation")
		return nil
	}
	entries := make([]chatEntry, 0, len(stored))
	for _, msg := range stored {
		entries = append(entries, chatEntry{
			ID:        uuid.NewString(),
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
			Status:    messageConfirmed,
		})
	}
	return entries
}

// Send appends an optimistic student echo, asks the tutor for a reply, and
// on success confirms the echo (keeping its original timestamp) and appends
// the assistant turn. On failure the echo is rolled back and the error
// returned.
func (s *chatService) Send(ctx context.Context, userID uint, content string) (*dto.ChatExchangeDTO, error) {
	conv := s.conversationFor(userID)

	conv.mu.Lock()
	if conv.sending {
		conv.mu.Unlock()
		return nil, ErrSendInFlight
	}
	conv.sending = true

	pending := chatEntry{
		ID:        uuid.NewString(),
		Role:      model.RoleStudent,
		Content:   content,
		Timestamp: time.Now(),
		Status:    messagePending,
	}
	conv.messages = append(conv.messages, pending)
	history := historyFor(conv.messages[:len(conv.messages)-1])
	conv.mu.Unlock()

	reply, err := s.tutor.ChatReply(ctx, history, content)

	conv.mu.Lock()
	defer func() {
		conv.sending = false
		conv.mu.Unlock()
	}()

	if err != nil {
		// Roll back the optimistic echo; no unconfirmed ghost messages.
		conv.messages = removeByID(conv.messages, pending.ID)
		return nil, fmt.Errorf("chat send failed: %w", err)
	}

	for i := range conv.messages {
		if conv.messages[i].ID == pending.ID {
			conv.messages[i].Status = messageConfirmed
		}
	}
	assistant := chatEntry{
		ID:        uuid.NewString(),
		Role:      model.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
		Status:    messageConfirmed,
	}
	conv.messages = append(conv.messages, assistant)

	s.persist(userID, pending.Content, reply)

	return &dto.ChatExchangeDTO{
		Student:   toChatDTO(pending.ID, model.RoleStudent, content, pending.Timestamp),
		Assistant: toChatDTO(assistant.ID, model.RoleAssistant, reply, assistant.Timestamp),
	}, nil
}

func (s *chatService) History(userID uint) []dto.ChatMessageDTO {
	conv := s.conversationFor(userID)
	conv.mu.Lock()
	defer conv.mu.Unlock()

	out := make([]dto.ChatMessageDTO, 0, len(conv.messages))
	for _, msg := range conv.messages {
		out = append(out, toChatDTO(msg.ID, msg.Role, msg.Content, msg.Timestamp))
	}
	return out
}

// persist writes both confirmed turns. Persistence failures are logged only;
// the in-memory conversation is already consistent.
func (s *chatService) persist(userID uint, studentContent, assistantContent string) {
	student := &model.ChatMessage{UserID: userID, Role: model.RoleStudent, Content: studentContent}
	if err := s.chatRepo.Create(student); err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("ChatService: failed to persist student turn")
		return
	}
	assistant := &model.ChatMessage{UserID: userID, Role: model.RoleAssistant, Content: assistantContent}
	if err := s.chatRepo.Create(assistant); err != nil {
		log.Error().Err(err).Uint("userID", userID).Msg("ChatService: failed to persist assistant turn")
	}
}

func historyFor(entries []chatEntry) []model.ChatMessage {
	history := make([]model.ChatMessage, 0, len(entries))
	for _, e := range entries {
		if e.Status != messageConfirmed {
			continue
		}
		history = append(history, model.ChatMessage{Role: e.Role, Content: e.Content})
	}
	return history
}

func removeByID(entries []chatEntry, id string) []chatEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

func toChatDTO(id, role, content string, ts time.Time) dto.ChatMessageDTO {
	return dto.ChatMessageDTO{ID: id, Role: role, Content: content, Timestamp: ts}
}
