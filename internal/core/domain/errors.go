package domain

import "errors"

var (
	// ErrUnauthenticated covers every failed login or credential check. Callers
	// outside the service only ever see this, never the underlying reason.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("access forbidden")

	ErrMalformedCredentials = errors.New("malformed credentials")
	ErrIdentityNotFound     = errors.New("identity not found")
	ErrSessionNotFound      = errors.New("session not found")
	ErrIdentityExists       = errors.New("identity already exists")
	ErrSessionExists        = errors.New("session already exists")
	ErrReservedUsername     = errors.New("username is reserved")
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidInput         = errors.New("invalid input")
)
