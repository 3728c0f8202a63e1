package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailNotVerified indicates the account has not confirmed its email address.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidToken indicates a missing, malformed, tampered or expired token.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrWrongTokenPurpose indicates a token presented for a purpose it was not issued for.
	ErrWrongTokenPurpose = errors.New("wrong token purpose")
)
