package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSeedNotes(t *testing.T) {
	userID := uuid.New()
	folderID := uuid.New()

	notes := seedNotes(userID, folderID)
	require.NotEmpty(t, notes)

	inFolder := 0
	for _, n := range notes {
		require.Equal(t, userID, n.UserID)
		require.NotEmpty(t, n.Title)
		require.NotEmpty(t, n.Content)
		require.NotNil(t, []string(n.Tags))
		if n.FolderID != nil {
			require.Equal(t, folderID, *n.FolderID)
			inFolder++
		}
	}

	// The fixtures cover both a filed and an unfiled note.
	require.Greater(t, inFolder, 0)
	require.Less(t, inFolder, len(notes))
}
