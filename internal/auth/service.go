package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"notely/internal/models"
	"notely/internal/token"
)

// Credentials is the result of a successful signup or login.
type Credentials struct {
	User         models.UserAPI
	AccessToken  string
	RefreshToken string
}

// Service composes the token service and the stores into the session
// lifecycle: signup, login, refresh, logout, current-user.
type Service struct {
	log        zerolog.Logger
	users      UserStore
	sessions   SessionStore
	tokens     *token.Service
	bcryptCost int
}

func NewService(log zerolog.Logger, users UserStore, sessions SessionStore, tokens *token.Service, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		log:        log,
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Signup registers a new account and opens its first session. The unique
// email constraint, not the lookup, is what guarantees exactly one winner
// when two signups race.
func (s *Service) Signup(ctx context.Context, email, password, name string) (*Credentials, error) {
	if _, err := s.users.UserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if err != ErrUserNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user registered")

	return s.openSession(ctx, user)
}

// Login verifies credentials and opens an additional session. Prior
// sessions for the same user stay valid.
func (s *Service) Login(ctx context.Context, email, password string) (*Credentials, error) {
	user, err := s.users.UserByEmail(ctx, email)
	if err != nil {
		if err == ErrUserNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, user)
}

func (s *Service) openSession(ctx context.Context, user *models.User) (*Credentials, error) {
	accessToken, err := s.tokens.IssueAccess(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefresh(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.tokens.RefreshTTL()),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &Credentials{
		User:         user.ToAPI(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a live refresh token for a new access token. The
// refresh token itself is not rotated; the session row stays valid until
// its original expiry or an explicit logout. The stored expiry is checked
// independently of the bearer token's own expiry.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}

	session, err := s.sessions.SessionByToken(ctx, refreshToken)
	if err != nil {
		if err == ErrSessionNotFound {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}
	if session.ExpiresAt.Before(time.Now()) {
		return "", ErrInvalidRefreshToken
	}

	return s.tokens.IssueAccess(claims.UserID, claims.Email)
}

// Logout revokes the session matching the token, best effort. It reports
// success to the caller regardless; already-issued access tokens remain
// valid until they expire on their own.
func (s *Service) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	if err := s.sessions.DeleteSession(ctx, refreshToken); err != nil {
		s.log.Warn().Err(err).Msg("logout: session delete failed")
	}
}

// CurrentUser resolves the authenticated identity to its public profile.
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (models.UserAPI, error) {
	user, err := s.users.UserByID(ctx, userID)
	if err != nil {
		return models.UserAPI{}, err
	}
	return user.ToAPI(), nil
}

// SetAvatar records the avatar URL for the user and returns the updated
// profile.
func (s *Service) SetAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (models.UserAPI, error) {
	if err := s.users.UpdateAvatar(ctx, userID, avatarURL); err != nil {
		return models.UserAPI{}, err
	}
	return s.CurrentUser(ctx, userID)
}
