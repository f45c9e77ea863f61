package auth

import "errors"

var (
	// ErrEmailTaken is returned when signup hits the unique email
	// constraint, whether through the pre-check or at commit time.
	ErrEmailTaken = errors.New("user already exists")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRefreshToken covers a bad signature, an expired bearer,
	// a missing session row, and a stale session row alike.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
)
