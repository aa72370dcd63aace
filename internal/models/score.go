// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// CompatibilityScore holds the scoring breakdown for a pair of users.
// User1ID is always the smaller ID so each pair has exactly one row.
type CompatibilityScore struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	User1ID          uint       `gorm:"not null;index:idx_score_pair,unique" json:"user1_id"`
	User2ID          uint       `gorm:"not null;index:idx_score_pair,unique" json:"user2_id"`
	AlgorithmicScore int        `gorm:"not null" json:"algorithmic_score"`
	AIScore          *int       `json:"ai_score,omitempty"`
	FinalScore       int        `gorm:"not null" json:"final_score"`
	AIReasoning      string     `gorm:"type:text" json:"ai_reasoning,omitempty"`
	Reasoning        string     `gorm:"type:text" json:"reasoning,omitempty"`
	LocationScore    int        `gorm:"not null" json:"location_score"`
	GenreScore       int        `gorm:"not null" json:"genre_score"`
	ExperienceScore  int        `gorm:"not null" json:"experience_score"`
	CalculatedAt     time.Time  `json:"calculated_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	User1 *User `gorm:"foreignKey:User1ID" json:"user1,omitempty"`
	User2 *User `gorm:"foreignKey:User2ID" json:"user2,omitempty"`
}

// TableName specifies the table name for GORM.
func (CompatibilityScore) TableName() string {
	return "compatibility_scores"
}

// BeforeCreate ensures User1ID < User2ID for consistent pair ordering.
func (s *CompatibilityScore) BeforeCreate(_ *gorm.DB) error {
	s.Normalize()
	return nil
}

// Normalize swaps the pair so User1ID is always the smaller ID.
func (s *CompatibilityScore) Normalize() {
	if s.User1ID > s.User2ID {
		s.User1ID, s.User2ID = s.User2ID, s.User1ID
		s.User1, s.User2 = s.User2, s.User1
	}
}

// OtherUserID returns the counterpart of the given user in the pair.
func (s *CompatibilityScore) OtherUserID(userID uint) uint {
	if s.User1ID == userID {
		return s.User2ID
	}
	return s.User1ID
}
