package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"notely/internal/ai"
	"notely/internal/models"
)

type contentRequest struct {
	Content string `json:"content"`
}

func (a *API) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil || req.Content == "" {
		respondMessage(w, http.StatusBadRequest, "Content is required")
		return
	}

	summary, err := a.ai.Summarize(r.Context(), req.Content)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Failed to generate summary")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

func (a *API) handleGenerateTags(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil || req.Content == "" {
		respondMessage(w, http.StatusBadRequest, "Content is required")
		return
	}

	tags, err := a.ai.GenerateTags(r.Context(), req.Content)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Failed to generate tags")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

func (a *API) handleGenerateTitle(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil || req.Content == "" {
		respondMessage(w, http.StatusBadRequest, "Content is required")
		return
	}

	title, err := a.ai.GenerateTitle(r.Context(), req.Content)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Failed to generate title")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"title": title})
}

type chatRequest struct {
	Question string `json:"question"`
}

func (a *API) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil || req.Question == "" {
		respondMessage(w, http.StatusBadRequest, "Question is required")
		return
	}

	refs, err := a.noteRefs(r)
	if err != nil {
		respondServerError(w)
		return
	}
	if len(refs) == 0 {
		respondMessage(w, http.StatusBadRequest, "No notes available to chat with")
		return
	}

	answer, err := a.ai.ChatWithNotes(r.Context(), req.Question, refs)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Failed to process chat request")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// handleSemanticSearch asks the model to rank the caller's notes against
// the query and returns the matching notes in relevance order.
func (a *API) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())

	query := r.URL.Query().Get("query")
	if query == "" {
		respondMessage(w, http.StatusBadRequest, "Search query is required")
		return
	}

	refs, err := a.noteRefs(r)
	if err != nil {
		respondServerError(w)
		return
	}

	ids, err := a.ai.SemanticSearch(r.Context(), query, refs)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Search failed")
		return
	}

	notes := make([]models.NoteAPI, 0, len(ids))
	if len(ids) > 0 {
		ctx, cancel := withTimeout(r.Context())
		defer cancel()

		var matched []models.Note
		err := a.store.ORM.WithContext(ctx).
			Preload("Folder").
			Where("user_id = ? AND id IN ?", id.UserID, ids).
			Find(&matched).Error
		if err != nil {
			respondServerError(w)
			return
		}

		byID := make(map[uuid.UUID]models.Note, len(matched))
		for _, note := range matched {
			byID[note.ID] = note
		}
		for _, noteID := range ids {
			if note, ok := byID[noteID]; ok {
				notes = append(notes, note.ToAPI())
			}
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

// noteRefs loads the slim note projection the AI layer operates on,
// scoped to the caller.
func (a *API) noteRefs(r *http.Request) ([]ai.NoteRef, error) {
	id, _ := identityFrom(r.Context())

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var notes []models.Note
	err := a.store.ORM.WithContext(ctx).
		Select("id", "title", "content").
		Where("user_id = ?", id.UserID).
		Find(&notes).Error
	if err != nil {
		return nil, err
	}

	refs := make([]ai.NoteRef, 0, len(notes))
	for _, note := range notes {
		refs = append(refs, ai.NoteRef{ID: note.ID, Title: note.Title, Content: note.Content})
	}
	return refs, nil
}
