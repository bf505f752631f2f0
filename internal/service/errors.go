package service

import "errors"

var (
	// ErrNotAuthenticated is returned when an operation requires a signed-in
	// user and none is present. No data operation is attempted.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNoteLimitReached is the distinguished free-tier condition: the
	// owning user already has the maximum number of notes. Callers react
	// with an upgrade prompt, not a generic failure notice.
	ErrNoteLimitReached = errors.New("free note limit reached")

	// ErrNoteNotFound covers both a missing note and a note owned by
	// someone else; callers cannot tell the two apart.
	ErrNoteNotFound = errors.New("note not found")

	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken and ErrUsernameTaken reject a registration whose
	// email or username is already claimed by another account.
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password; callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidRefreshToken is returned when a refresh request carries
	// a token that is expired, malformed, or not a refresh token.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)
