package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind selects which signing secret and TTL a token is bound to. Access
// and refresh tokens are never interchangeable.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	// ErrInvalid covers tampered input, garbage input, a wrong secret,
	// a wrong algorithm, and a kind mismatch.
	ErrInvalid = errors.New("invalid token")
	// ErrExpired means the signature checked out but the token is past
	// its embedded expiry.
	ErrExpired = errors.New("token expired")
)

// Claims is the signed bundle carried by both token kinds.
type Claims struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Kind   Kind      `json:"kind"`
	jwt.RegisteredClaims
}

// Service issues and verifies the two token kinds. It owns no storage;
// revocation lives with the session store.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// New builds a Service. The two secrets must be distinct so a refresh
// token can never pass verification as an access token.
func New(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Service, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("both signing secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// AccessTTL reports the configured access-token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccess signs a short-lived access token for the given identity.
func (s *Service) IssueAccess(userID uuid.UUID, email string) (string, error) {
	return s.issue(userID, email, KindAccess, s.accessSecret, s.accessTTL)
}

// IssueRefresh signs a long-lived refresh token for the given identity.
func (s *Service) IssueRefresh(userID uuid.UUID, email string) (string, error) {
	return s.issue(userID, email, KindRefresh, s.refreshSecret, s.refreshTTL)
}

func (s *Service) issue(userID uuid.UUID, email string, kind Kind, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// A unique ID keeps two logins in the same second from
			// producing byte-identical refresh tokens.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(secret)
}

// Verify parses and validates a token of the given kind, returning its
// claims. It fails with ErrExpired for a well-signed but stale token and
// ErrInvalid for everything else.
func (s *Service) Verify(tokenString string, kind Kind) (*Claims, error) {
	secret := s.accessSecret
	if kind == KindRefresh {
		secret = s.refreshSecret
	}

	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tok.Valid || claims.Kind != kind {
		return nil, ErrInvalid
	}

	return &claims, nil
}
