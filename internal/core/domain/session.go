package domain

import "time"

// Session binds an opaque bearer identifier to the identity that logged in.
// ExpiresAt is nil for sessions without a lifetime.
type Session struct {
	ID        string
	Username  string
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
