package models

import (
	"time"

	"gorm.io/gorm"
)

// Blog is a community post with tags, likes and append-only comments.
type Blog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user"`
	Title     string         `gorm:"not null" json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Image     string         `json:"image"`
	Tags      []string       `gorm:"serializer:json" json:"tags"`
	Likes     []BlogLike     `gorm:"foreignKey:BlogID" json:"likes"`
	Comments  []BlogComment  `gorm:"foreignKey:BlogID" json:"comments"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BlogLike records that a user likes a blog. The composite primary key makes
// the like set duplicate-free; toggling removes or inserts the row.
type BlogLike struct {
	BlogID    uint      `gorm:"primaryKey" json:"blog_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BlogComment is an append-only comment on a blog.
type BlogComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlogID    uint      `gorm:"not null;index" json:"blog_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// LikedBy reports whether userID is in the blog's like set.
func (b *Blog) LikedBy(userID uint) bool {
	for _, like := range b.Likes {
		if like.UserID == userID {
			return true
		}
	}
	return false
}
