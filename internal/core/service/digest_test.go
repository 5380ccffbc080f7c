package service

import (
	"testing"
)

func TestSHA256Hasher_KnownVector(t *testing.T) {
	h := SHA256Hasher{}
	got, err := h.Digest("abc")
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Fatalf("digest = %s, want %s", got, want)
	}
	if !h.Matches(want, "abc") {
		t.Fatalf("expected match")
	}
	if h.Matches(want, "abd") {
		t.Fatalf("expected mismatch")
	}
}

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := testHasher()
	d, err := h.Digest("pw1")
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if d == "pw1" {
		t.Fatalf("digest must not be the plaintext")
	}
	if !h.Matches(d, "pw1") {
		t.Fatalf("expected match")
	}
	if h.Matches(d, "pw2") {
		t.Fatalf("expected mismatch")
	}
	if h.Matches("not-a-bcrypt-hash", "pw1") {
		t.Fatalf("garbage digest must not match")
	}
}

func TestNewPasswordHasher(t *testing.T) {
	if _, ok := mustHasher(t, "").(BcryptHasher); !ok {
		t.Fatalf("default should be bcrypt")
	}
	if _, ok := mustHasher(t, DigestSHA256).(SHA256Hasher); !ok {
		t.Fatalf("sha256 should map to SHA256Hasher")
	}
	if _, err := NewPasswordHasher("md5"); err == nil {
		t.Fatalf("expected error for unknown digest")
	}
}

func mustHasher(t *testing.T, name string) PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(name)
	if err != nil {
		t.Fatalf("NewPasswordHasher(%q): %v", name, err)
	}
	return h
}
