package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. The password hash never leaves
// the persistence layer; handlers expose the API shape only.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:text;uniqueIndex;not null"`
	Name         string    `gorm:"type:text;not null"`
	PasswordHash string    `gorm:"type:text;not null"`
	Avatar       *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt    time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`

	Sessions []Session `gorm:"constraint:OnDelete:CASCADE"`
	Notes    []Note    `gorm:"constraint:OnDelete:CASCADE"`
	Folders  []Folder  `gorm:"constraint:OnDelete:CASCADE"`
}

func (User) TableName() string { return "users" }

// UserAPI is the public profile returned to clients.
type UserAPI struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) ToAPI() UserAPI {
	return UserAPI{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}
