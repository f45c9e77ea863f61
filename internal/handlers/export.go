package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/klauspost/compress/zstd"

	"notely/internal/models"
)

// handleExportNotes streams every note owned by the caller as
// zstd-compressed JSON, suitable for offline backup.
func (a *API) handleExportNotes(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var notes []models.Note
	err := a.store.ORM.WithContext(ctx).
		Preload("Folder").
		Where("user_id = ?", id.UserID).
		Order("updated_at DESC").
		Find(&notes).Error
	if err != nil {
		respondServerError(w)
		return
	}

	payload := make([]models.NoteAPI, 0, len(notes))
	for _, note := range notes {
		payload = append(payload, note.ToAPI())
	}

	w.Header().Set("Content-Type", "application/zstd")
	w.Header().Set("Content-Disposition", `attachment; filename="notes-export.json.zst"`)
	w.WriteHeader(http.StatusOK)

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return
	}
	defer zw.Close()

	_ = json.NewEncoder(zw).Encode(map[string]any{
		"exportedAt": time.Now().UTC(),
		"notes":      payload,
	})
}
