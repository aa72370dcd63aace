// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// BandStatus represents the lifecycle state of a band.
type BandStatus string

const (
	// BandStatusActive indicates a band that is currently playing together.
	BandStatusActive BandStatus = "active"
	// BandStatusInactive indicates a band on hiatus.
	BandStatusInactive BandStatus = "inactive"
	// BandStatusDisbanded indicates a band that has broken up.
	BandStatusDisbanded BandStatus = "disbanded"
)

// Band represents a matched band with four fixed role slots.
type Band struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	DrummerID     uint           `gorm:"not null;index" json:"drummer_id"`
	GuitaristID   uint           `gorm:"not null;index" json:"guitarist_id"`
	BassistID     uint           `gorm:"not null;index" json:"bassist_id"`
	SingerID      uint           `gorm:"not null;index" json:"singer_id"`
	Status        BandStatus     `gorm:"type:varchar(20);default:'active'" json:"status"`
	AvgScore      int            `json:"avg_compatibility_score"`
	FormationDate time.Time      `json:"formation_date"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Drummer   *User `gorm:"foreignKey:DrummerID" json:"drummer,omitempty"`
	Guitarist *User `gorm:"foreignKey:GuitaristID" json:"guitarist,omitempty"`
	Bassist   *User `gorm:"foreignKey:BassistID" json:"bassist,omitempty"`
	Singer    *User `gorm:"foreignKey:SingerID" json:"singer,omitempty"`
}

// MemberIDs returns the four slot occupants in a fixed order.
func (b *Band) MemberIDs() []uint {
	return []uint{b.DrummerID, b.GuitaristID, b.BassistID, b.SingerID}
}

// HasMember reports whether the given user occupies any slot in the band.
func (b *Band) HasMember(userID uint) bool {
	for _, id := range b.MemberIDs() {
		if id == userID {
			return true
		}
	}
	return false
}
