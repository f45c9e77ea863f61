package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"notely/internal/models"
)

// UserStore is the persistence contract the auth service needs for users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
}

// SessionStore is the persistence contract for refresh-token sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *models.Session) error
	SessionByToken(ctx context.Context, refreshToken string) (*models.Session, error)
	DeleteSession(ctx context.Context, refreshToken string) error
}

// GormStore implements both store contracts over a GORM handle.
type GormStore struct {
	orm *gorm.DB
}

func NewGormStore(orm *gorm.DB) *GormStore {
	return &GormStore{orm: orm}
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	err := s.orm.WithContext(ctx).Create(user).Error
	if err == nil {
		return nil
	}

	// The unique index on email is the arbiter for concurrent signups;
	// surface it as the same conflict the pre-check reports.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

func (s *GormStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.orm.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.orm.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	res := s.orm.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("avatar", avatarURL)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *GormStore) CreateSession(ctx context.Context, session *models.Session) error {
	return s.orm.WithContext(ctx).Create(session).Error
}

func (s *GormStore) SessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	var session models.Session
	if err := s.orm.WithContext(ctx).Where("refresh_token = ?", refreshToken).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes the row matching the token value. Deleting an
// absent row is not an error.
func (s *GormStore) DeleteSession(ctx context.Context, refreshToken string) error {
	return s.orm.WithContext(ctx).Where("refresh_token = ?", refreshToken).Delete(&models.Session{}).Error
}
