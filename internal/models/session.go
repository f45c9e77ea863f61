package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the durable record that makes a refresh token revocable
// server-side. One row per login event; rows for the same user are never
// deduplicated.
type Session struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	RefreshToken string    `gorm:"type:text;uniqueIndex;not null"`
	ExpiresAt    time.Time `gorm:"type:timestamptz;not null;index"`
	CreatedAt    time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Session) TableName() string { return "sessions" }
