package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"notely/internal/token"
)

func newTestTokens(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.New("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return svc
}

func TestRequireAuth(t *testing.T) {
	tokens := newTestTokens(t)
	api := &API{store: &Store{}, tokens: tokens}

	userID := uuid.New()
	access, err := tokens.IssueAccess(userID, "a@x.com")
	require.NoError(t, err)
	refresh, err := tokens.IssueRefresh(userID, "a@x.com")
	require.NoError(t, err)

	var seen Identity
	probe := api.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = identityFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid access token", "Bearer " + access, http.StatusNoContent},
		{"missing header", "", http.StatusUnauthorized},
		{"not a bearer scheme", "Basic " + access, http.StatusUnauthorized},
		{"refresh token where access expected", "Bearer " + refresh, http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			probe.ServeHTTP(rec, req)
			require.Equal(t, tt.status, rec.Code)
		})
	}

	require.Equal(t, userID, seen.UserID)
	require.Equal(t, "a@x.com", seen.Email)
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	short, err := token.New("access-secret", "refresh-secret", time.Millisecond, time.Hour)
	require.NoError(t, err)

	access, err := short.IssueAccess(uuid.New(), "a@x.com")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	api := &API{store: &Store{}, tokens: short}
	probe := api.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	probe.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
