package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"notely/internal/models"
	"notely/pkg/db"
)

const (
	notesCreatedTopic = "notely.notes.created"
	notesUpdatedTopic = "notely.notes.updated"
	notesDeletedTopic = "notely.notes.deleted"
)

// noteRow is the scan target for the raw list query.
type noteRow struct {
	ID          uuid.UUID  `db:"id"`
	FolderID    *uuid.UUID `db:"folder_id"`
	Title       string     `db:"title"`
	Content     string     `db:"content"`
	Tags        []byte     `db:"tags"`
	IsPinned    bool       `db:"is_pinned"`
	IsFavorite  bool       `db:"is_favorite"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	FolderName  *string    `db:"folder_name"`
	FolderColor *string    `db:"folder_color"`
}

func (row noteRow) toAPI() models.NoteAPI {
	tags := []string{}
	if len(row.Tags) > 0 {
		_ = json.Unmarshal(row.Tags, &tags)
	}

	api := models.NoteAPI{
		ID:         row.ID,
		Title:      row.Title,
		Content:    row.Content,
		Tags:       tags,
		FolderID:   row.FolderID,
		IsPinned:   row.IsPinned,
		IsFavorite: row.IsFavorite,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
	if row.FolderID != nil && row.FolderName != nil && row.FolderColor != nil {
		api.Folder = &models.FolderRef{ID: *row.FolderID, Name: *row.FolderName, Color: *row.FolderColor}
	}
	return api
}

// handleListNotes returns the caller's notes, pinned first then most
// recently updated, optionally filtered by folder, pin state, or a
// case-insensitive search across title, content, and tags.
func (a *API) handleListNotes(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	query := `
        SELECT n.id, n.folder_id, n.title, n.content, n.tags,
               n.is_pinned, n.is_favorite, n.created_at, n.updated_at,
               f.name AS folder_name, f.color AS folder_color
        FROM notes n
        LEFT JOIN folders f ON f.id = n.folder_id
        WHERE n.user_id = $1`
	args := []any{id.UserID}

	if folderID := r.URL.Query().Get("folderId"); folderID != "" {
		parsed, err := uuid.Parse(folderID)
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "Invalid folder id")
			return
		}
		args = append(args, parsed)
		query += ` AND n.folder_id = $2`
	}
	if r.URL.Query().Get("pinned") == "true" {
		query += ` AND n.is_pinned`
	}
	if search := r.URL.Query().Get("search"); search != "" {
		args = append(args, "%"+search+"%", search)
		like := strconv.Itoa(len(args) - 1)
		exact := strconv.Itoa(len(args))
		query += ` AND (n.title ILIKE $` + like +
			` OR n.content ILIKE $` + like +
			` OR n.tags ? $` + exact + `)`
	}

	query += ` ORDER BY n.is_pinned DESC, n.updated_at DESC`

	var rows []noteRow
	if err := db.Select(r.Context(), a.store.DB, &rows, query, args...); err != nil {
		respondServerError(w)
		return
	}

	notes := make([]models.NoteAPI, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, row.toAPI())
	}

	respondJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (a *API) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	noteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Note not found")
		return
	}

	note, err := a.fetchNote(r, noteID, id.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondMessage(w, http.StatusNotFound, "Note not found")
			return
		}
		respondServerError(w)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"note": note.ToAPI()})
}

type createNoteRequest struct {
	Title    string     `json:"title"`
	Content  string     `json:"content"`
	Tags     []string   `json:"tags"`
	FolderID *uuid.UUID `json:"folderId"`
}

func (a *API) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Title and content are required")
		return
	}
	if req.Title == "" || req.Content == "" {
		respondMessage(w, http.StatusBadRequest, "Title and content are required")
		return
	}
	if req.Tags == nil {
		req.Tags = []string{}
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()
	orm := a.store.ORM.WithContext(ctx)

	if req.FolderID != nil && !a.ownsFolder(r, *req.FolderID, id.UserID) {
		respondMessage(w, http.StatusNotFound, "Folder not found")
		return
	}

	note := models.Note{
		ID:       uuid.New(),
		UserID:   id.UserID,
		FolderID: req.FolderID,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     datatypes.NewJSONSlice(req.Tags),
	}
	if err := orm.Create(&note).Error; err != nil {
		respondServerError(w)
		return
	}

	created, err := a.fetchNote(r, note.ID, id.UserID)
	if err != nil {
		respondServerError(w)
		return
	}

	a.publishJSON(notesCreatedTopic, map[string]any{
		"note_id": note.ID,
		"user_id": id.UserID,
	})
	respondJSON(w, http.StatusCreated, map[string]any{"note": created.ToAPI()})
}

// nullableUUID distinguishes an absent folderId from an explicit null,
// which detaches the note from its folder.
type nullableUUID struct {
	set   bool
	value *uuid.UUID
}

func (n *nullableUUID) UnmarshalJSON(data []byte) error {
	n.set = true
	if string(data) == "null" {
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	n.value = &id
	return nil
}

type updateNoteRequest struct {
	Title      *string      `json:"title"`
	Content    *string      `json:"content"`
	Tags       *[]string    `json:"tags"`
	FolderID   nullableUUID `json:"folderId"`
	IsPinned   *bool        `json:"isPinned"`
	IsFavorite *bool        `json:"isFavorite"`
}

func (a *API) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	noteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Note not found")
		return
	}

	var req updateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()
	orm := a.store.ORM.WithContext(ctx)

	var existing models.Note
	if err := orm.Where("id = ? AND user_id = ?", noteID, id.UserID).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondMessage(w, http.StatusNotFound, "Note not found")
			return
		}
		respondServerError(w)
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.Tags != nil {
		updates["tags"] = datatypes.NewJSONSlice(*req.Tags)
	}
	if req.FolderID.set {
		if req.FolderID.value != nil && !a.ownsFolder(r, *req.FolderID.value, id.UserID) {
			respondMessage(w, http.StatusNotFound, "Folder not found")
			return
		}
		updates["folder_id"] = req.FolderID.value
	}
	if req.IsPinned != nil {
		updates["is_pinned"] = *req.IsPinned
	}
	if req.IsFavorite != nil {
		updates["is_favorite"] = *req.IsFavorite
	}

	if err := orm.Model(&existing).Updates(updates).Error; err != nil {
		respondServerError(w)
		return
	}

	updated, err := a.fetchNote(r, noteID, id.UserID)
	if err != nil {
		respondServerError(w)
		return
	}

	a.publishJSON(notesUpdatedTopic, map[string]any{
		"note_id": noteID,
		"user_id": id.UserID,
	})
	respondJSON(w, http.StatusOK, map[string]any{"note": updated.ToAPI()})
}

func (a *API) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	noteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Note not found")
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()
	orm := a.store.ORM.WithContext(ctx)

	res := orm.Where("id = ? AND user_id = ?", noteID, id.UserID).Delete(&models.Note{})
	if res.Error != nil {
		respondServerError(w)
		return
	}
	if res.RowsAffected == 0 {
		respondMessage(w, http.StatusNotFound, "Note not found")
		return
	}

	a.publishJSON(notesDeletedTopic, map[string]any{
		"note_id": noteID,
		"user_id": id.UserID,
	})
	respondMessage(w, http.StatusOK, "Note deleted successfully")
}

func (a *API) handleTogglePin(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	noteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Note not found")
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()
	orm := a.store.ORM.WithContext(ctx)

	var note models.Note
	if err := orm.Where("id = ? AND user_id = ?", noteID, id.UserID).First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondMessage(w, http.StatusNotFound, "Note not found")
			return
		}
		respondServerError(w)
		return
	}

	if err := orm.Model(&note).Updates(map[string]any{
		"is_pinned":  !note.IsPinned,
		"updated_at": time.Now().UTC(),
	}).Error; err != nil {
		respondServerError(w)
		return
	}

	updated, err := a.fetchNote(r, noteID, id.UserID)
	if err != nil {
		respondServerError(w)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"note": updated.ToAPI()})
}

// fetchNote loads a note with its folder summary, always scoped to the
// owning user.
func (a *API) fetchNote(r *http.Request, noteID, userID uuid.UUID) (*models.Note, error) {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var note models.Note
	err := a.store.ORM.WithContext(ctx).
		Preload("Folder").
		Where("id = ? AND user_id = ?", noteID, userID).
		First(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (a *API) ownsFolder(r *http.Request, folderID, userID uuid.UUID) bool {
	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var count int64
	err := a.store.ORM.WithContext(ctx).
		Model(&models.Folder{}).
		Where("id = ? AND user_id = ?", folderID, userID).
		Count(&count).Error
	return err == nil && count > 0
}
