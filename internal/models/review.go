package models

import (
	"time"
)

// Review rates the owner of a food post after an exchange. A user may review
// a given food post at most once; the composite unique index enforces it.
// Reviews are hard-deleted so a deleted review does not block a re-review.
type Review struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;uniqueIndex:idx_reviews_post_author" json:"user_id"`
	User         User           `gorm:"foreignKey:UserID" json:"user"`
	TargetUserID uint           `gorm:"not null;index" json:"target_user_id"`
	TargetUser   User           `gorm:"foreignKey:TargetUserID" json:"target_user"`
	FoodPostID   uint           `gorm:"not null;uniqueIndex:idx_reviews_post_author" json:"food_post_id"`
	FoodPost     FoodPost       `gorm:"foreignKey:FoodPostID" json:"food_post"`
	Rating       int            `gorm:"not null" json:"rating"`
	Comment      string         `gorm:"type:text;not null" json:"comment"`
	Images       []string       `gorm:"serializer:json" json:"images"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
