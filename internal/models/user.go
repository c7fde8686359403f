// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User identifies an account referenced by food posts, blogs, reviews and
// chats. Account creation and credentials are owned by the external auth
// service; this application only resolves identity fields.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Avatar       string    `json:"avatar"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
