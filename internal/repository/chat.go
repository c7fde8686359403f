package repository

import (
	"context"
	"time"

	"foodloop/internal/models"

	"gorm.io/gorm"
)

// ChatRepository defines the interface for chat data operations
type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error
	GetByID(ctx context.Context, id uint) (*models.Chat, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.Chat, error)
	FindByParticipantsAndPost(ctx context.Context, userA, userB uint, foodPostID *uint) (*models.Chat, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessageByID(ctx context.Context, id uint) (*models.Message, error)
	ListMessages(ctx context.Context, chatID uint, limit, offset int) ([]*models.Message, error)
	MarkMessagesRead(ctx context.Context, chatID, readerID uint) (int64, error)
	UpdateLastMessage(ctx context.Context, chatID uint, at time.Time) error
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, chat *models.Chat) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *chatRepository) GetByID(ctx context.Context, id uint) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Preload("FoodPost").
		First(&chat, id).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Chat, error) {
	var chats []*models.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_participants cp ON cp.chat_id = chats.id AND cp.user_id = ?", userID).
		Preload("Participants").
		Preload("FoodPost").
		Order("last_message DESC").
		Find(&chats).Error
	return chats, err
}

// FindByParticipantsAndPost locates the chat whose participant set is
// exactly {userA, userB} and whose food post matches. Returns
// gorm.ErrRecordNotFound when no such chat exists.
func (r *chatRepository) FindByParticipantsAndPost(ctx context.Context, userA, userB uint, foodPostID *uint) (*models.Chat, error) {
	var chat models.Chat
	q := r.db.WithContext(ctx).
		Joins("JOIN chat_participants cp_self ON cp_self.chat_id = chats.id AND cp_self.user_id = ?", userA).
		Joins("JOIN chat_participants cp_other ON cp_other.chat_id = chats.id AND cp_other.user_id = ?", userB).
		Where("NOT EXISTS (SELECT 1 FROM chat_participants cp WHERE cp.chat_id = chats.id AND cp.user_id NOT IN (?, ?))", userA, userB)

	if foodPostID != nil {
		q = q.Where("chats.food_post_id = ?", *foodPostID)
	} else {
		q = q.Where("chats.food_post_id IS NULL")
	}

	err := q.Preload("Participants").Preload("FoodPost").First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatRepository) GetMessageByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *chatRepository) ListMessages(ctx context.Context, chatID uint, limit, offset int) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

// MarkMessagesRead flips the read flag on every unread message in the
// chat not authored by the reader. Returns how many rows changed.
func (r *chatRepository) MarkMessagesRead(ctx context.Context, chatID, readerID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND read = ?", chatID, readerID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (r *chatRepository) UpdateLastMessage(ctx context.Context, chatID uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("id = ?", chatID).
		Update("last_message", at).Error
}
