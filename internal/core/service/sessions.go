package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/podfetch/authgate/internal/core/domain"
	"github.com/podfetch/authgate/internal/core/ports"
)

const (
	sessionEntropyBytes = 32
	maxSessionAttempts  = 3
)

// SessionManager mints, finds and revokes sessions on top of a
// SessionRepository. A zero ttl issues sessions that never expire.
type SessionManager struct {
	repo    ports.SessionRepository
	ttl     time.Duration
	now     func() time.Time
	entropy io.Reader
}

func NewSessionManager(repo ports.SessionRepository, ttl time.Duration) *SessionManager {
	return &SessionManager{
		repo:    repo,
		ttl:     ttl,
		now:     time.Now,
		entropy: rand.Reader,
	}
}

// NewSessionID hashes fresh randomness read from entropy together with
// username into a 64-character hex identifier.
func NewSessionID(username string, entropy io.Reader) (string, error) {
	buf := make([]byte, sessionEntropyBytes)
	if _, err := io.ReadFull(entropy, buf); err != nil {
		return "", fmt.Errorf("read session entropy: %w", err)
	}

	h := sha256.New()
	h.Write(buf)
	h.Write([]byte{0})
	h.Write([]byte(username))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Create persists a new session owned by username. An identifier collision
// is retried with fresh randomness; any other store error is returned.
func (m *SessionManager) Create(ctx context.Context, username string) (*domain.Session, error) {
	now := m.now().UTC()

	var lastErr error
	for attempt := 0; attempt < maxSessionAttempts; attempt++ {
		id, err := NewSessionID(username, m.entropy)
		if err != nil {
			return nil, err
		}

		session := &domain.Session{ID: id, Username: username, CreatedAt: now}
		if m.ttl > 0 {
			exp := now.Add(m.ttl)
			session.ExpiresAt = &exp
		}

		err = m.repo.Create(ctx, session)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, domain.ErrSessionExists) {
			return nil, fmt.Errorf("insert session: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("insert session: %w", lastErr)
}

// Find returns the session with the given identifier. Expired sessions are
// reported as domain.ErrSessionNotFound.
func (m *SessionManager) Find(ctx context.Context, id string) (*domain.Session, error) {
	session, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Expired(m.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Revoke deletes the session and reports whether one existed. Unknown
// identifiers are not an error.
func (m *SessionManager) Revoke(ctx context.Context, id string) (bool, error) {
	err := m.repo.Delete(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrSessionNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("delete session: %w", err)
	}
}
