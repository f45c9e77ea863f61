package handlers

import (
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"notely/internal/auth"
	"notely/internal/models"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type credentialsResponse struct {
	Message      string         `json:"message"`
	User         models.UserAPI `json:"user"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		respondMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	creds, err := a.auth.Signup(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			respondMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		respondServerError(w)
		return
	}

	respondJSON(w, http.StatusCreated, credentialsResponse{
		Message:      "User created successfully",
		User:         creds.User,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	creds, err := a.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondServerError(w)
		return
	}

	respondJSON(w, http.StatusOK, credentialsResponse{
		Message:      "Login successful",
		User:         creds.User,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
	})
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		respondMessage(w, http.StatusBadRequest, "Refresh token required")
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	accessToken, err := a.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			respondMessage(w, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		respondServerError(w)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"accessToken": accessToken})
}

// handleLogout always reports success: revoking an unknown or already
// revoked token is indistinguishable from revoking a live one.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err == nil && req.RefreshToken != "" {
		ctx, cancel := withTimeout(r.Context())
		defer cancel()
		a.auth.Logout(ctx, req.RefreshToken)
	}

	respondMessage(w, http.StatusOK, "Logout successful")
}

func (a *API) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	user, err := a.auth.CurrentUser(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondMessage(w, http.StatusNotFound, "User not found")
			return
		}
		respondServerError(w)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

type avatarUploadRequest struct {
	Filename string `json:"filename"`
}

// handleAvatarUpload hands the client a presigned PUT URL and records the
// resulting public URL on the profile. Object storage is an optional
// collaborator; without it the endpoint reports unavailability.
func (a *API) handleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFrom(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if a.store.S3 == nil || a.config.AvatarBucket == "" || a.config.AvatarURLBase == "" {
		respondMessage(w, http.StatusServiceUnavailable, "Avatar storage is not configured")
		return
	}

	var req avatarUploadRequest
	if err := decodeJSON(r, &req); err != nil || req.Filename == "" {
		respondMessage(w, http.StatusBadRequest, "Filename is required")
		return
	}

	key := "avatars/" + id.UserID.String() + "/" + uuid.NewString() + strings.ToLower(path.Ext(req.Filename))

	uploadURL, err := a.store.S3.PresignPut(r.Context(), a.config.AvatarBucket, key, 15*time.Minute)
	if err != nil {
		respondServerError(w)
		return
	}

	avatarURL := strings.TrimSuffix(a.config.AvatarURLBase, "/") + "/" + key

	ctx, cancel := withTimeout(r.Context())
	defer cancel()

	var previous *string
	if user, err := a.auth.CurrentUser(ctx, id.UserID); err == nil {
		previous = user.Avatar
	}

	if _, err := a.auth.SetAvatar(ctx, id.UserID, avatarURL); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondMessage(w, http.StatusNotFound, "User not found")
			return
		}
		respondServerError(w)
		return
	}

	// Best effort: drop the replaced object so old avatars do not pile up.
	if previous != nil {
		if oldKey, ok := avatarKey(a.config.AvatarURLBase, *previous); ok {
			_ = a.store.S3.DeleteObject(r.Context(), a.config.AvatarBucket, oldKey)
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"uploadUrl": uploadURL,
		"avatarUrl": avatarURL,
	})
}

// avatarKey maps a previously issued avatar URL back to its object key.
// URLs outside the configured base are not ours to delete.
func avatarKey(base, avatarURL string) (string, bool) {
	key, ok := strings.CutPrefix(avatarURL, strings.TrimSuffix(base, "/")+"/")
	return key, ok && key != ""
}
