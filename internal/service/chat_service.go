package service

import (
	"context"
	"errors"
	"time"

	"foodloop/internal/middleware"
	"foodloop/internal/models"
	"foodloop/internal/notifications"
	"foodloop/internal/observability"
	"foodloop/internal/repository"

	"gorm.io/gorm"
)

const maxMessageContentLen = 10000 // 10K characters

// ChatService provides two-party chat business logic.
type ChatService struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	postRepo    repository.FoodPostRepository
	broadcaster notifications.Broadcaster
}

// NewChatService returns a new ChatService. broadcaster may be nil, in
// which case no room events are published.
func NewChatService(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	postRepo repository.FoodPostRepository,
	broadcaster notifications.Broadcaster,
) *ChatService {
	return &ChatService{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		postRepo:    postRepo,
		broadcaster: broadcaster,
	}
}

// OpenChatInput is the input for opening a chat.
type OpenChatInput struct {
	OtherUserID uint  `json:"otherUserId"`
	FoodPostID  *uint `json:"foodPostId"`
}

// Open returns the chat between the caller and the other user for the
// given food post, creating it when it does not exist yet. Opening the
// same pair twice yields the same chat.
func (s *ChatService) Open(ctx context.Context, callerID uint, in OpenChatInput) (*models.Chat, error) {
	if in.OtherUserID == callerID {
		return nil, models.NewValidationError("A chat requires two distinct participants")
	}

	other, err := s.userRepo.GetByID(ctx, in.OtherUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", in.OtherUserID)
		}
		return nil, err
	}

	if in.FoodPostID != nil {
		if _, err := s.postRepo.GetByID(ctx, *in.FoodPostID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Food post", *in.FoodPostID)
			}
			return nil, err
		}
	}

	existing, err := s.chatRepo.FindByParticipantsAndPost(ctx, callerID, in.OtherUserID, in.FoodPostID)
	switch {
	case err == nil:
		return existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Create a new chat below.
	default:
		return nil, err
	}

	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	chat := &models.Chat{
		FoodPostID:   in.FoodPostID,
		Participants: []models.User{*caller, *other},
		LastMessage:  time.Now().UTC(),
	}
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}
	return s.chatRepo.GetByID(ctx, chat.ID)
}

// ListChats returns the caller's chats, most recently active first.
func (s *ChatService) ListChats(ctx context.Context, callerID uint) ([]*models.Chat, error) {
	return s.chatRepo.ListByUser(ctx, callerID)
}

// GetChatForUser returns the chat if the caller is a participant.
func (s *ChatService) GetChatForUser(ctx context.Context, chatID, callerID uint) (*models.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Chat", chatID)
		}
		return nil, err
	}
	if !chat.HasParticipant(callerID) {
		return nil, models.NewForbiddenError("You are not a participant in this chat")
	}
	return chat, nil
}

// SendMessage persists a message from senderID into the chat, bumps the
// chat's last activity timestamp and publishes the message to the room.
// Fan-out failures never affect the persisted message.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID uint, content string) (*models.Message, error) {
	if content == "" {
		return nil, models.NewValidationError("Message content is required")
	}
	if len(content) > maxMessageContentLen {
		return nil, models.NewValidationError("Message content too long (max 10000 characters)")
	}

	chat, err := s.GetChatForUser(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ChatID:   chat.ID,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}
	if err := s.chatRepo.UpdateLastMessage(ctx, chat.ID, message.CreatedAt); err != nil {
		return nil, err
	}

	persisted, err := s.chatRepo.GetMessageByID(ctx, message.ID)
	if err != nil {
		return nil, err
	}
	observability.MessagesSent.Inc()

	s.publish(ctx, chat.ID, notifications.NewEvent(notifications.EventMessage, chat.ID, persisted))

	return persisted, nil
}

// ListMessages returns a chat's messages in arrival order, oldest first.
func (s *ChatService) ListMessages(ctx context.Context, chatID, callerID uint, limit, offset int) ([]*models.Message, error) {
	if _, err := s.GetChatForUser(ctx, chatID, callerID); err != nil {
		return nil, err
	}
	return s.chatRepo.ListMessages(ctx, chatID, normalizeLimit(limit), offset)
}

// MarkAsRead marks every message in the chat not sent by the caller as
// read. Returns how many messages changed state.
func (s *ChatService) MarkAsRead(ctx context.Context, chatID, callerID uint) (int64, error) {
	if _, err := s.GetChatForUser(ctx, chatID, callerID); err != nil {
		return 0, err
	}
	updated, err := s.chatRepo.MarkMessagesRead(ctx, chatID, callerID)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		s.publish(ctx, chatID, notifications.NewEvent(notifications.EventRead, chatID, map[string]interface{}{
			"reader_id": callerID,
			"count":     updated,
		}))
	}
	return updated, nil
}

func (s *ChatService) publish(ctx context.Context, chatID uint, event notifications.Event) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.PublishRoom(ctx, chatID, event); err != nil {
		middleware.Logger.WarnContext(ctx, "chat fan-out failed",
			"chat_id", chatID,
			"event_type", event.Type,
			"error", err,
		)
	}
}
