package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/podfetch/authgate/internal/core/domain"
)

// Guards implements ports.Guards over the identity resolver.
type Guards struct {
	resolver *IdentityResolver
	log      zerolog.Logger
}

func NewGuards(resolver *IdentityResolver, log zerolog.Logger) *Guards {
	return &Guards{resolver: resolver, log: log}
}

// RequireAdmin passes when no identity is asserted or when the asserted
// identity resolves to an admin.
func (g *Guards) RequireAdmin(ctx context.Context, username *string) error {
	return g.require(ctx, username, true)
}

// RequireAdminOrUploader passes when no identity is asserted or when the
// asserted identity resolves to an admin or uploader.
func (g *Guards) RequireAdminOrUploader(ctx context.Context, username *string) error {
	return g.require(ctx, username, false)
}

func (g *Guards) require(ctx context.Context, username *string, adminOnly bool) error {
	if username == nil {
		return nil
	}

	identity, err := g.resolver.Resolve(ctx, *username)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			g.log.Info().Str("username", *username).Msg("guard denied: unknown identity")
			return fmt.Errorf("%w: %w", domain.ErrForbidden, domain.ErrIdentityNotFound)
		}
		return fmt.Errorf("guard: %w", err)
	}

	if !roleAllows(identity.Role, adminOnly) {
		g.log.Info().
			Str("username", identity.Username).
			Str("role", identity.Role.String()).
			Bool("admin_only", adminOnly).
			Msg("guard denied: insufficient role")
		return fmt.Errorf("%w: role %q", domain.ErrForbidden, identity.Role)
	}
	return nil
}

func roleAllows(role domain.Role, adminOnly bool) bool {
	switch role {
	case domain.RoleAdmin:
		return true
	case domain.RoleUploader:
		return !adminOnly
	case domain.RoleRegular:
		return false
	default:
		return false
	}
}
