package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"notely/internal/models"
	"notely/internal/token"
)

type fakeStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*models.User
	byEmail  map[string]uuid.UUID
	sessions map[string]*models.Session

	createUserErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uuid.UUID]*models.User),
		byEmail:  make(map[string]uuid.UUID),
		sessions: make(map[string]*models.Session),
	}
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createUserErr != nil {
		return f.createUserErr
	}
	if _, ok := f.byEmail[user.Email]; ok {
		return ErrEmailTaken
	}
	copied := *user
	f.users[user.ID] = &copied
	f.byEmail[user.Email] = user.ID
	return nil
}

func (f *fakeStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *f.users[id]
	return &copied, nil
}

func (f *fakeStore) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeStore) UpdateAvatar(_ context.Context, id uuid.UUID, avatarURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.Avatar = &avatarURL
	return nil
}

func (f *fakeStore) CreateSession(_ context.Context, session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.sessions[session.RefreshToken] = &copied
	return nil
}

func (f *fakeStore) SessionByToken(_ context.Context, refreshToken string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[refreshToken]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *session
	return &copied, nil
}

func (f *fakeStore) DeleteSession(_ context.Context, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, refreshToken)
	return nil
}

func newTestTokens(t *testing.T) *token.Service {
	t.Helper()
	tokens, err := token.New("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return tokens
}

func newTestService(t *testing.T) (*Service, *fakeStore, *token.Service) {
	t.Helper()
	store := newFakeStore()
	tokens := newTestTokens(t)
	svc := NewService(zerolog.Nop(), store, store, tokens, 4)
	return svc, store, tokens
}

func TestSignup(t *testing.T) {
	svc, store, tokens := newTestService(t)
	ctx := context.Background()

	creds, err := svc.Signup(ctx, "a@x.com", "pw123456", "Ann")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", creds.User.Email)
	require.Equal(t, "Ann", creds.User.Name)

	claims, err := tokens.Verify(creds.AccessToken, token.KindAccess)
	require.NoError(t, err)
	require.Equal(t, creds.User.ID, claims.UserID)

	claims, err = tokens.Verify(creds.RefreshToken, token.KindRefresh)
	require.NoError(t, err)
	require.Equal(t, creds.User.ID, claims.UserID)

	session, err := store.SessionByToken(ctx, creds.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, creds.User.ID, session.UserID)
	require.WithinDuration(t, time.Now().Add(7*24*time.Hour), session.ExpiresAt, 5*time.Second)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "a@x.com", "pw123456", "Ann")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "a@x.com", "other-pw", "Imposter")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignupRaceResolvedByConstraint(t *testing.T) {
	// Both writers pass the pre-check; the store's unique constraint
	// rejects the second at commit time.
	svc, store, _ := newTestService(t)
	store.createUserErr = ErrEmailTaken

	_, err := svc.Signup(context.Background(), "a@x.com", "pw123456", "Ann")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginErrorsAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "a@x.com", "pw123456", "Ann")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "a@x.com", "wrong")
	_, unknownEmail := svc.Login(ctx, "nobody@x.com", "pw123456")

	require.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	require.Equal(t, wrongPassword, unknownEmail)
}

func TestLoginAddsSession(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	signup, err := svc.Signup(ctx, "a@x.com", "pw123456", "Ann")
	require.NoError(t, err)

	login, err := svc.Login(ctx, "a@x.com", "pw123456")
	require.NoError(t, err)
	require.NotEqual(t, signup.RefreshToken, login.RefreshToken)

	// Both sessions remain valid.
	_, err = store.SessionByToken(ctx, signup.RefreshToken)
	require.NoError(t, err)
	_, err = store.SessionByToken(ctx, login.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh(t *testing.T) {
	svc, store, tokens := newTestService(t)
	ctx := context.Background()

	creds, err := svc.Signup(ctx, "a@x.com", "pw123456", "Ann")
	require.NoError(t, err)

	accessToken, err := svc.Refresh(ctx, creds.RefreshToken)
	require.NoError(t, err)

	claims, err := tokens.Verify(accessToken, token.KindAccess)
	require.NoError(t, err)
	require.Equal(t, creds.User.ID, claims.UserID)

	// No rotation: the original session row is untouched.
	_, err = store.SessionByToken(ctx, creds.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsExpiredBearer(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	// Mint an already-expired bearer with the same secrets, and keep a
	// live session row for it: the bearer's own expiry must still win.
	shortLived, err := token.New("access-secret", "refresh-secret", time.Nanosecond, time.Nanosecond)
	require.NoError(t, err)
	userID := uuid.New()
	expired, err := shortLived.IssueRefresh(userID, "a@x.com")
	require.NoError(t, err)
	require.NoError(t, store.CreateSession(ctx, &models.Session{
		ID:           uuid.New(),
		UserID:       userID,
		RefreshToken: expired,
		ExpiresAt:    time.Now().Add(time.Hour),
	}))

	time.Sleep(10 * time.Millisecond)

	_, err = svc.Refresh(ctx, expired)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshRejectsRevokedSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	creds, err := svc.Signup(ctx, "a@x.com", "pw123456", "Ann")
	require.NoError(t, err)

	svc.Logout(ctx, creds.RefreshToken)

	// The bearer token itself has not expired, but its session is gone.
	_, err = svc.Refresh(ctx, creds.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshRejectsStaleSessionRow(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	creds, err := svc.Signup(ctx, "a@x.com", "pw123456", "Ann")
	require.NoError(t, err)

	// Simulate clock skew: the stored expiry is past even though the
	// bearer token still verifies.
	store.mu.Lock()
	store.sessions[creds.RefreshToken].ExpiresAt = time.Now().Add(-time.Minute)
	store.mu.Unlock()

	_, err = svc.Refresh(ctx, creds.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), "not-a-token")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	creds, err := svc.Signup(ctx, "a@x.com", "pw123456", "Ann")
	require.NoError(t, err)

	svc.Logout(ctx, creds.RefreshToken)
	svc.Logout(ctx, creds.RefreshToken)
	svc.Logout(ctx, "never-issued")

	_, err = store.SessionByToken(ctx, creds.RefreshToken)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCurrentUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	creds, err := svc.Signup(ctx, "a@x.com", "pw123456", "Ann")
	require.NoError(t, err)

	user, err := svc.CurrentUser(ctx, creds.User.ID)
	require.NoError(t, err)
	require.Equal(t, creds.User, user)

	_, err = svc.CurrentUser(ctx, uuid.New())
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetAvatar(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	creds, err := svc.Signup(ctx, "a@x.com", "pw123456", "Ann")
	require.NoError(t, err)

	user, err := svc.SetAvatar(ctx, creds.User.ID, "https://cdn.example.com/avatars/ann.png")
	require.NoError(t, err)
	require.NotNil(t, user.Avatar)
	require.Equal(t, "https://cdn.example.com/avatars/ann.png", *user.Avatar)
}
