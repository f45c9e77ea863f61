package models

import (
	"time"

	"github.com/google/uuid"
)

// Folder groups a user's notes. Deleting a folder detaches its notes
// rather than deleting them.
type Folder struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:text;not null"`
	Color     string    `gorm:"type:text;not null;default:'#3b82f6'"`
	Icon      *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`

	Notes []Note `gorm:"constraint:OnDelete:SET NULL"`
}

func (Folder) TableName() string { return "folders" }

// FolderAPI is the client-facing folder shape, including the note count
// computed by the list query.
type FolderAPI struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      *string   `json:"icon,omitempty"`
	NoteCount int64     `json:"noteCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (f Folder) ToAPI(noteCount int64) FolderAPI {
	return FolderAPI{
		ID:        f.ID,
		Name:      f.Name,
		Color:     f.Color,
		Icon:      f.Icon,
		NoteCount: noteCount,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// FolderRef is the summary embedded in note responses.
type FolderRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}
