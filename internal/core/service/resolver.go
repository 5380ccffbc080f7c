package service

import (
	"context"
	"fmt"

	"github.com/podfetch/authgate/internal/core/domain"
	"github.com/podfetch/authgate/internal/core/ports"
)

// IdentityResolver looks identities up by name. The configured bootstrap
// username always resolves to a synthesized admin without touching the
// store, shadowing any stored identity of the same name.
type IdentityResolver struct {
	repo              ports.IdentityRepository
	bootstrapUsername string
}

func NewIdentityResolver(repo ports.IdentityRepository, bootstrapUsername string) *IdentityResolver {
	return &IdentityResolver{repo: repo, bootstrapUsername: bootstrapUsername}
}

// IsBootstrap reports whether name is the configured bootstrap username.
func (r *IdentityResolver) IsBootstrap(name string) bool {
	return r.bootstrapUsername != "" && name == r.bootstrapUsername
}

// Resolve returns the identity called name, or domain.ErrIdentityNotFound.
func (r *IdentityResolver) Resolve(ctx context.Context, name string) (*domain.Identity, error) {
	if r.IsBootstrap(name) {
		return domain.NewBootstrapIdentity(name), nil
	}

	identity, err := r.repo.FindByUsername(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", name, err)
	}
	return identity, nil
}
