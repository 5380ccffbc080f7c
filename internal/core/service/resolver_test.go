package service

import (
	"context"
	"errors"
	"testing"

	"github.com/podfetch/authgate/internal/core/domain"
)

func TestIdentityResolver_BootstrapShadowsStoredIdentity(t *testing.T) {
	repo := newStubIdentityRepo()
	h := testHasher()
	repo.users["admin"] = &domain.Identity{ID: "1", Username: "admin", Role: domain.RoleRegular, PasswordDigest: digestOf(h, "pw")}

	r := NewIdentityResolver(repo, "admin")
	got, err := r.Resolve(context.Background(), "admin")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", got.Role)
	}
	if got.PasswordDigest != nil {
		t.Fatalf("bootstrap identity must not carry a digest")
	}
	if got.ID != domain.BootstrapIdentityID || !got.ExplicitConsent {
		t.Fatalf("unexpected bootstrap identity: %+v", got)
	}
	if repo.lookups != 0 {
		t.Fatalf("bootstrap resolution must not touch the store, got %d lookups", repo.lookups)
	}
}

func TestIdentityResolver_StoredIdentity(t *testing.T) {
	repo := newStubIdentityRepo()
	repo.users["alice"] = &domain.Identity{ID: "2", Username: "alice", Role: domain.RoleUploader}

	r := NewIdentityResolver(repo, "admin")
	got, err := r.Resolve(context.Background(), "alice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Username != "alice" || got.Role != domain.RoleUploader {
		t.Fatalf("unexpected identity: %+v", got)
	}
}

func TestIdentityResolver_NotFound(t *testing.T) {
	r := NewIdentityResolver(newStubIdentityRepo(), "")
	if _, err := r.Resolve(context.Background(), "ghost"); !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("expected ErrIdentityNotFound, got %v", err)
	}
}

func TestIdentityResolver_EmptyBootstrapNeverMatches(t *testing.T) {
	r := NewIdentityResolver(newStubIdentityRepo(), "")
	if r.IsBootstrap("") {
		t.Fatalf("empty bootstrap username must not match the empty name")
	}
}
