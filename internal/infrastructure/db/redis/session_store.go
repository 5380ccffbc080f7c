package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/podfetch/authgate/internal/core/domain"
)

// SessionStore implements ports.SessionRepository backed by Redis.
// Key format: session:<id>. Sessions with an expiry carry it as the key TTL.
type SessionStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewSessionStore creates a SessionStore wrapping the given Redis client.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, now: time.Now}
}

type storedSession struct {
	Username  string `json:"username"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session) error {
	payload, ttl, err := s.encode(sess)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, key(sess.ID), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	if !ok {
		return domain.ErrSessionExists
	}
	return nil
}

func (s *SessionStore) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	return decode(id, raw)
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) encode(sess *domain.Session) ([]byte, time.Duration, error) {
	ss := storedSession{Username: sess.Username, CreatedAt: sess.CreatedAt.Unix()}

	var ttl time.Duration
	if sess.ExpiresAt != nil {
		ss.ExpiresAt = sess.ExpiresAt.Unix()
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return nil, 0, fmt.Errorf("insert session: already expired at %s", sess.ExpiresAt.Format(time.RFC3339))
		}
	}

	payload, err := json.Marshal(ss)
	if err != nil {
		return nil, 0, fmt.Errorf("encode session: %w", err)
	}
	return payload, ttl, nil
}

func decode(id string, raw []byte) (*domain.Session, error) {
	var ss storedSession
	if err := json.Unmarshal(raw, &ss); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}

	sess := &domain.Session{
		ID:        id,
		Username:  ss.Username,
		CreatedAt: time.Unix(ss.CreatedAt, 0).UTC(),
	}
	if ss.ExpiresAt != 0 {
		exp := time.Unix(ss.ExpiresAt, 0).UTC()
		sess.ExpiresAt = &exp
	}
	return sess, nil
}

func key(id string) string {
	return "session:" + id
}
