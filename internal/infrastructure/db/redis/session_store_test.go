package redis

import (
	"testing"
	"time"

	"github.com/podfetch/authgate/internal/core/domain"
)

func TestKey(t *testing.T) {
	if got := key("abc"); got != "session:abc" {
		t.Fatalf("key = %q", got)
	}
}

func TestEncodeDecode_WithExpiry(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	exp := now.Add(time.Hour)
	s := &SessionStore{now: func() time.Time { return now }}

	payload, ttl, err := s.encode(&domain.Session{ID: "id1", Username: "alice", CreatedAt: now, ExpiresAt: &exp})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", ttl)
	}

	got, err := decode("id1", payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "id1" || got.Username != "alice" || !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(exp) {
		t.Fatalf("expires_at = %v, want %v", got.ExpiresAt, exp)
	}
}

func TestEncode_NoExpiryMeansNoTTL(t *testing.T) {
	s := &SessionStore{now: time.Now}
	payload, ttl, err := s.encode(&domain.Session{ID: "id2", Username: "bob", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if ttl != 0 {
		t.Fatalf("ttl = %v, want 0", ttl)
	}
	got, err := decode("id2", payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ExpiresAt != nil {
		t.Fatalf("expected nil expiry, got %v", got.ExpiresAt)
	}
}

func TestEncode_RejectsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Second)
	s := &SessionStore{now: func() time.Time { return now }}
	if _, _, err := s.encode(&domain.Session{ID: "x", ExpiresAt: &past}); err == nil {
		t.Fatalf("expected error for expired session")
	}
}

func TestDecode_Corrupt(t *testing.T) {
	if _, err := decode("x", []byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}
