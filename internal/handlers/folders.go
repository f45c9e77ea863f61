package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"notely/internal/models"
	"notely/pkg/db"
)

const (
	foldersCreatedTopic = "notely.folders.created"
	foldersDeletedTopic = "notely.folders.deleted"
)

const defaultFolderColor = "#3b82f6"

type folderRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	Icon      *string   `db:"icon"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	NoteCount int64     `db:"note_count"`
}

func (a *API) handleListFolders(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	query := `
        SELECT f.id, f.name, f.color, f.icon, f.created_at, f.updated_at,
               COUNT(n.id) AS note_count
        FROM folders f
        LEFT JOIN notes n ON n.folder_id = f.id
        WHERE f.user_id = $1
        GROUP BY f.id
        ORDER BY f.created_at DESC`

	var rows []folderRow
	if err := db.Select(r.Context(), a.store.DB, &rows, query, id.UserID); err != nil {
		respondServerError(w)
		return
	}

	folders := make([]models.FolderAPI, 0, len(rows))
	for _, row := range rows {
		folders = append(folders, models.FolderAPI{
			ID:        row.ID,
			Name:      row.Name,
			Color:     row.Color,
			Icon:      row.Icon,
			NoteCount: row.NoteCount,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

type createFolderRequest struct {
	Name  string  `json:"name"`
	Color string  `json:"color"`
	Icon  *string `json:"icon"`
}

func (a *API) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req createFolderRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		respondMessage(w, http.StatusBadRequest, "Folder name is required")
		return
	}
	if req.Color == "" {
		req.Color = defaultFolderColor
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	folder := models.Folder{
		ID:     uuid.New(),
		UserID: id.UserID,
		Name:   req.Name,
		Color:  req.Color,
		Icon:   req.Icon,
	}
	if err := a.store.ORM.WithContext(ctx).Create(&folder).Error; err != nil {
		respondServerError(w)
		return
	}

	a.publishJSON(foldersCreatedTopic, map[string]any{
		"folder_id": folder.ID,
		"user_id":   id.UserID,
	})
	respondJSON(w, http.StatusCreated, map[string]any{"folder": folder.ToAPI(0)})
}

type updateFolderRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
	Icon  *string `json:"icon"`
}

func (a *API) handleUpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	folderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Folder not found")
		return
	}

	var req updateFolderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()
	orm := a.store.ORM.WithContext(ctx)

	var folder models.Folder
	if err := orm.Where("id = ? AND user_id = ?", folderID, id.UserID).First(&folder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondMessage(w, http.StatusNotFound, "Folder not found")
			return
		}
		respondServerError(w)
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}

	if err := orm.Model(&folder).Updates(updates).Error; err != nil {
		respondServerError(w)
		return
	}

	if err := orm.Where("id = ? AND user_id = ?", folderID, id.UserID).First(&folder).Error; err != nil {
		respondServerError(w)
		return
	}

	var count struct {
		NoteCount int64 `db:"note_count"`
	}
	err = db.Get(r.Context(), a.store.DB, &count,
		`SELECT COUNT(*) AS note_count FROM notes WHERE folder_id = $1`, folderID)
	if err != nil {
		respondServerError(w)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"folder": folder.ToAPI(count.NoteCount)})
}

// handleDeleteFolder removes the folder; its notes are detached, not
// deleted, by the schema's SET NULL constraint.
func (a *API) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	folderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Folder not found")
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	res := a.store.ORM.WithContext(ctx).
		Where("id = ? AND user_id = ?", folderID, id.UserID).
		Delete(&models.Folder{})
	if res.Error != nil {
		respondServerError(w)
		return
	}
	if res.RowsAffected == 0 {
		respondMessage(w, http.StatusNotFound, "Folder not found")
		return
	}

	a.publishJSON(foldersDeletedTopic, map[string]any{
		"folder_id": folderID,
		"user_id":   id.UserID,
	})
	respondMessage(w, http.StatusOK, "Folder deleted successfully")
}
