// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// MessageType distinguishes user chat messages from system announcements.
type MessageType string

const (
	// MessageTypeText is a regular user-authored chat message.
	MessageTypeText MessageType = "text"
	// MessageTypeSystem is a server-generated announcement.
	MessageTypeSystem MessageType = "system"
)

// Message represents a chat message within a band.
type Message struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	BandID      uint           `gorm:"not null;index" json:"band_id"`
	Band        *Band          `gorm:"foreignKey:BandID" json:"band,omitempty"`
	// UserID is nil for system announcements.
	UserID      *uint          `gorm:"index" json:"user_id,omitempty"`
	User        *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	MessageType MessageType    `gorm:"type:varchar(10);default:'text'" json:"message_type"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
