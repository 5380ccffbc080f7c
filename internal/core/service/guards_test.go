package service

import (
	"context"
	"errors"
	"testing"

	"github.com/podfetch/authgate/internal/core/domain"
)

func strPtr(s string) *string { return &s }

func newGuardFixture() (*Guards, *stubIdentityRepo) {
	repo := newStubIdentityRepo()
	repo.users["root"] = &domain.Identity{Username: "root", Role: domain.RoleAdmin}
	repo.users["up"] = &domain.Identity{Username: "up", Role: domain.RoleUploader}
	repo.users["joe"] = &domain.Identity{Username: "joe", Role: domain.RoleRegular}
	repo.users["odd"] = &domain.Identity{Username: "odd", Role: domain.Role("Admin")}
	return NewGuards(NewIdentityResolver(repo, "boot"), nopLogger()), repo
}

func TestGuards_NoIdentityAlwaysPasses(t *testing.T) {
	g, repo := newGuardFixture()
	repo.findErr = errStoreDown

	if err := g.RequireAdmin(context.Background(), nil); err != nil {
		t.Fatalf("RequireAdmin(nil): %v", err)
	}
	if err := g.RequireAdminOrUploader(context.Background(), nil); err != nil {
		t.Fatalf("RequireAdminOrUploader(nil): %v", err)
	}
}

func TestGuards_RequireAdmin(t *testing.T) {
	g, _ := newGuardFixture()
	ctx := context.Background()

	tests := []struct {
		user   string
		allow  bool
		noUser bool
	}{
		{user: "root", allow: true},
		{user: "boot", allow: true},
		{user: "up"},
		{user: "joe"},
		{user: "odd"},
		{user: "ghost", noUser: true},
	}
	for _, tt := range tests {
		err := g.RequireAdmin(ctx, strPtr(tt.user))
		if tt.allow {
			if err != nil {
				t.Fatalf("%s: expected pass, got %v", tt.user, err)
			}
			continue
		}
		if !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: expected ErrForbidden, got %v", tt.user, err)
		}
		if errors.Is(err, domain.ErrIdentityNotFound) != tt.noUser {
			t.Fatalf("%s: unknown-identity marker mismatch: %v", tt.user, err)
		}
	}
}

func TestGuards_RequireAdminOrUploader(t *testing.T) {
	g, _ := newGuardFixture()
	ctx := context.Background()

	for _, name := range []string{"root", "up", "boot"} {
		if err := g.RequireAdminOrUploader(ctx, strPtr(name)); err != nil {
			t.Fatalf("%s: expected pass, got %v", name, err)
		}
	}
	for _, name := range []string{"joe", "odd", "ghost"} {
		if err := g.RequireAdminOrUploader(ctx, strPtr(name)); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("%s: expected ErrForbidden, got %v", name, err)
		}
	}
}

func TestGuards_StoreErrorIsNotForbidden(t *testing.T) {
	g, repo := newGuardFixture()
	repo.findErr = errStoreDown

	err := g.RequireAdmin(context.Background(), strPtr("root"))
	if !errors.Is(err, errStoreDown) || errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected raw store error, got %v", err)
	}
}
