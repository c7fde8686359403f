package models

import (
	"time"
)

// Chat is a conversation between exactly two participants, optionally linked
// to a food post. LastMessage mirrors the createdAt of the newest message so
// chat lists can sort by recency without loading messages.
type Chat struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FoodPostID   *uint     `gorm:"index" json:"food_post_id,omitempty"`
	FoodPost     *FoodPost `gorm:"foreignKey:FoodPostID" json:"food_post,omitempty"`
	Participants []User    `gorm:"many2many:chat_participants" json:"participants"`
	Messages     []Message `gorm:"foreignKey:ChatID" json:"messages,omitempty"`
	LastMessage  time.Time `gorm:"index" json:"last_message"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Message is an entry in a chat. Read flips to true when the counterpart
// marks the chat as read; it is never unset.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    uint      `gorm:"not null;index" json:"chat_id"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Sender    *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// HasParticipant reports whether userID is one of the chat's participants.
func (c *Chat) HasParticipant(userID uint) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}
