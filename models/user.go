package models

import (
	"time"

	"github.com/google/uuid"
)

// Skill levels a user can declare and a project can require.
const (
	LevelJunior = "junior"
	LevelMiddle = "middle"
	LevelSenior = "senior"
)

// ValidLevel reports whether level is one of the known skill levels.
func ValidLevel(level string) bool {
	switch level {
	case LevelJunior, LevelMiddle, LevelSenior:
		return true
	}
	return false
}

// User is a registered member who can found projects and express interest in others'.
type User struct {
	ID           uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Nickname     string    `json:"nickname" db:"nickname" gorm:"type:text;not null;uniqueIndex:idx_users_nickname"`
	Email        string    `json:"email" db:"email" gorm:"type:text;not null;uniqueIndex:idx_users_email"`
	Name         string    `json:"name" db:"name" gorm:"type:text;not null;default:''"`
	Bio          string    `json:"bio" db:"bio" gorm:"type:text;not null;default:''"`
	Level        string    `json:"level" db:"level" gorm:"type:text;not null"`
	Language     string    `json:"language" db:"language" gorm:"type:text;not null"`
	PasswordHash string    `json:"-" db:"password_hash" gorm:"type:text;not null"`
	Version      int       `json:"version" db:"version" gorm:"type:integer;not null;default:1"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at" gorm:"autoUpdateTime"`
}

// Public returns a copy of the user with credential material cleared.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}
