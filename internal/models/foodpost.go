package models

import (
	"time"

	"gorm.io/gorm"
)

// Food post kinds.
const (
	FoodPostTypeDonation = "donation"
	FoodPostTypeRequest  = "request"
)

// Food post lifecycle states.
const (
	FoodPostStatusAvailable = "available"
	FoodPostStatusPending   = "pending"
	FoodPostStatusCompleted = "completed"
)

// FoodPost is a donation or request published at a location.
// Invariant: AssignedToID set implies Status != available.
type FoodPost struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	User         User           `gorm:"foreignKey:UserID" json:"user"`
	Type         string         `gorm:"not null;index" json:"type"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	FoodType     string         `gorm:"not null" json:"food_type"`
	Quantity     string         `gorm:"not null" json:"quantity"`
	ExpiryTime   time.Time      `gorm:"not null" json:"expiry_time"`
	Images       []string       `gorm:"serializer:json" json:"images"`
	Lat          float64        `gorm:"index" json:"lat"`
	Lng          float64        `gorm:"index" json:"lng"`
	Address      string         `json:"address"`
	Status       string         `gorm:"not null;default:available;index" json:"status"`
	AssignedToID *uint          `gorm:"index" json:"assigned_to_id,omitempty"`
	AssignedTo   *User          `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// DistanceMeters is not persisted; computed by radius searches.
	DistanceMeters float64 `gorm:"-" json:"distance_meters,omitempty"`
}

// IsValidFoodPostType reports whether t is a known post kind.
func IsValidFoodPostType(t string) bool {
	return t == FoodPostTypeDonation || t == FoodPostTypeRequest
}

// IsValidFoodPostStatus reports whether s is a known lifecycle state.
func IsValidFoodPostStatus(s string) bool {
	return s == FoodPostStatusAvailable || s == FoodPostStatusPending || s == FoodPostStatusCompleted
}
