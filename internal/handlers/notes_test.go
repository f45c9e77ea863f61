package handlers

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUpdateNoteRequestFolderID(t *testing.T) {
	id := uuid.New()

	t.Run("absent leaves folder untouched", func(t *testing.T) {
		var req updateNoteRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title":"t"}`), &req))
		require.False(t, req.FolderID.set)
	})

	t.Run("explicit null detaches", func(t *testing.T) {
		var req updateNoteRequest
		require.NoError(t, json.Unmarshal([]byte(`{"folderId":null}`), &req))
		require.True(t, req.FolderID.set)
		require.Nil(t, req.FolderID.value)
	})

	t.Run("uuid assigns", func(t *testing.T) {
		var req updateNoteRequest
		require.NoError(t, json.Unmarshal([]byte(`{"folderId":"`+id.String()+`"}`), &req))
		require.True(t, req.FolderID.set)
		require.NotNil(t, req.FolderID.value)
		require.Equal(t, id, *req.FolderID.value)
	})

	t.Run("malformed rejected", func(t *testing.T) {
		var req updateNoteRequest
		require.Error(t, json.Unmarshal([]byte(`{"folderId":"nope"}`), &req))
	})
}
