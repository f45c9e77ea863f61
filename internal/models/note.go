package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Note is an owned document. Every lookup must filter by both note id and
// owning user id; a note is never addressed by id alone.
type Note struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID                   `gorm:"type:uuid;not null;index"`
	FolderID   *uuid.UUID                  `gorm:"type:uuid;index"`
	Title      string                      `gorm:"type:text;not null"`
	Content    string                      `gorm:"type:text;not null"`
	Tags       datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	IsPinned   bool                        `gorm:"not null;default:false"`
	IsFavorite bool                        `gorm:"not null;default:false"`
	CreatedAt  time.Time                   `gorm:"type:timestamptz;not null;default:now();autoCreateTime"`
	UpdatedAt  time.Time                   `gorm:"type:timestamptz;not null;default:now();autoUpdateTime"`

	Folder *Folder `gorm:"foreignKey:FolderID;references:ID;constraint:OnDelete:SET NULL"`
}

func (Note) TableName() string { return "notes" }

// NoteAPI is the client-facing note shape with the folder summary embedded.
type NoteAPI struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Tags       []string   `json:"tags"`
	FolderID   *uuid.UUID `json:"folderId,omitempty"`
	Folder     *FolderRef `json:"folder,omitempty"`
	IsPinned   bool       `json:"isPinned"`
	IsFavorite bool       `json:"isFavorite"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (n Note) ToAPI() NoteAPI {
	tags := []string(n.Tags)
	if tags == nil {
		tags = []string{}
	}

	api := NoteAPI{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		Tags:       tags,
		FolderID:   n.FolderID,
		IsPinned:   n.IsPinned,
		IsFavorite: n.IsFavorite,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
	if n.Folder != nil {
		api.Folder = &FolderRef{ID: n.Folder.ID, Name: n.Folder.Name, Color: n.Folder.Color}
	}
	return api
}
