// Package models contains data structures for the application's domain models.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// PrimaryRole is the band role a musician primarily plays.
type PrimaryRole string

const (
	// RoleDrummer is the drummer slot role.
	RoleDrummer PrimaryRole = "drummer"
	// RoleGuitarist is the guitarist slot role.
	RoleGuitarist PrimaryRole = "guitarist"
	// RoleBassist is the bassist slot role.
	RoleBassist PrimaryRole = "bassist"
	// RoleSinger is the singer slot role.
	RoleSinger PrimaryRole = "singer"
	// RoleOther covers musicians outside the four fixed band slots.
	RoleOther PrimaryRole = "other"
)

// ExperienceLevel is an ordered skill level used by the compatibility scorer.
type ExperienceLevel string

const (
	// ExperienceBeginner is the lowest experience level.
	ExperienceBeginner ExperienceLevel = "beginner"
	// ExperienceIntermediate is the second experience level.
	ExperienceIntermediate ExperienceLevel = "intermediate"
	// ExperienceAdvanced is the third experience level.
	ExperienceAdvanced ExperienceLevel = "advanced"
	// ExperienceProfessional is the highest experience level.
	ExperienceProfessional ExperienceLevel = "professional"
)

// experienceRank orders levels for distance-based scoring.
var experienceRank = map[ExperienceLevel]int{
	ExperienceBeginner:     0,
	ExperienceIntermediate: 1,
	ExperienceAdvanced:     2,
	ExperienceProfessional: 3,
}

// Rank returns the ordinal position of the level, or -1 for unknown levels.
func (e ExperienceLevel) Rank() int {
	if r, ok := experienceRank[e]; ok {
		return r
	}
	return -1
}

// Valid reports whether the level is one of the known experience levels.
func (e ExperienceLevel) Valid() bool {
	return e.Rank() >= 0
}

// ValidRole reports whether the given role is a known primary role.
func ValidRole(r PrimaryRole) bool {
	switch r {
	case RoleDrummer, RoleGuitarist, RoleBassist, RoleSinger, RoleOther:
		return true
	}
	return false
}

// Instruments is the fixed vocabulary selectable during profile setup.
var Instruments = []string{
	"drums", "guitar", "bass", "vocals", "keyboard", "piano",
	"violin", "cello", "saxophone", "trumpet", "flute",
	"ukulele", "banjo", "harmonica", "synthesizer",
}

// Genres is the fixed vocabulary selectable during profile setup.
var Genres = []string{
	"rock", "pop", "jazz", "blues", "metal", "punk",
	"folk", "country", "classical", "electronic", "hip-hop",
	"r&b", "reggae", "indie", "funk", "soul",
}

// StringList stores a slice of strings as a JSON column so the same model
// works against PostgreSQL and the in-memory SQLite used in tests.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

// User represents a musician profile in JamMatch.
type User struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Username         string          `gorm:"unique;not null" json:"username"`
	Email            string          `gorm:"unique;not null" json:"email"`
	Password         string          `gorm:"not null" json:"-"`
	Name             string          `json:"name"`
	Bio              string          `gorm:"type:text" json:"bio"`
	PrimaryRole      PrimaryRole     `gorm:"type:varchar(20)" json:"primary_role"`
	Instruments      StringList      `gorm:"type:text" json:"instruments"`
	Genres           StringList      `gorm:"type:text" json:"genres"`
	Experience       ExperienceLevel `gorm:"type:varchar(20)" json:"experience"`
	Location         string          `json:"location"`
	AvatarURL        string          `json:"avatar_url"`
	ProfileCompleted bool            `gorm:"default:false" json:"profile_completed"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

// ValidateProfile checks the profile fields required before a user can be
// matched. It returns a ValidationError naming the first offending field.
func (u *User) ValidateProfile() error {
	if strings.TrimSpace(u.Name) == "" {
		return NewValidationError("Name is required")
	}
	if !ValidRole(u.PrimaryRole) {
		return NewValidationError("Primary role must be one of: drummer, guitarist, bassist, singer, other")
	}
	if !u.Experience.Valid() {
		return NewValidationError("Experience must be one of: beginner, intermediate, advanced, professional")
	}
	if strings.TrimSpace(u.Location) == "" {
		return NewValidationError("Location is required")
	}
	if err := validateVocabulary("Instruments", u.Instruments, Instruments); err != nil {
		return err
	}
	return validateVocabulary("Genres", u.Genres, Genres)
}

func validateVocabulary(field string, values StringList, vocabulary []string) error {
	if len(values) < 1 || len(values) > 10 {
		return NewValidationError(fmt.Sprintf("%s must contain between 1 and 10 entries", field))
	}
	allowed := make(map[string]struct{}, len(vocabulary))
	for _, v := range vocabulary {
		allowed[v] = struct{}{}
	}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if _, ok := allowed[key]; !ok {
			return NewValidationError(fmt.Sprintf("%s contains unknown entry %q", field, v))
		}
		if _, dup := seen[key]; dup {
			return NewValidationError(fmt.Sprintf("%s contains duplicate entry %q", field, v))
		}
		seen[key] = struct{}{}
	}
	return nil
}
