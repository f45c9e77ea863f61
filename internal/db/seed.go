package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"notely/internal/models"
)

// SeedEmail is the address of the development account created by Seed.
// Its password is "devpassword".
const SeedEmail = "dev@notely.local"

const seedPassword = "devpassword"

// Seed inserts a development account with a starter folder and a few
// notes. Running it twice is safe; if the account already exists nothing
// is written.
func Seed(ctx context.Context, database *gorm.DB) error {
	var existing models.User
	err := database.WithContext(ctx).Where("email = ?", SeedEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        SeedEmail,
		Name:         "Dev User",
		PasswordHash: string(hash),
	}
	folder := models.Folder{
		ID:     uuid.New(),
		UserID: user.ID,
		Name:   "Getting Started",
		Color:  "#3b82f6",
	}

	return database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The unique email index arbitrates concurrent seed runs.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&folder).Error; err != nil {
			return err
		}
		notes := seedNotes(user.ID, folder.ID)
		return tx.Create(&notes).Error
	})
}

func seedNotes(userID, folderID uuid.UUID) []models.Note {
	return []models.Note{
		{
			ID:       uuid.New(),
			UserID:   userID,
			FolderID: &folderID,
			Title:    "Welcome to Notely",
			Content:  "Pin important notes, group them into folders, and tag them for search.",
			Tags:     datatypes.NewJSONSlice([]string{"welcome"}),
			IsPinned: true,
		},
		{
			ID:       uuid.New(),
			UserID:   userID,
			FolderID: &folderID,
			Title:    "AI features",
			Content:  "Try summarize, generate-tags, and chat under /api/ai once GROQ_API_KEY is set.",
			Tags:     datatypes.NewJSONSlice([]string{"ai", "howto"}),
		},
		{
			ID:      uuid.New(),
			UserID:  userID,
			Title:   "Loose note",
			Content: "Notes do not need a folder.",
			Tags:    datatypes.NewJSONSlice([]string{}),
		},
	}
}
