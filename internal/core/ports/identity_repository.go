package ports

import (
	"context"

	"github.com/podfetch/authgate/internal/core/domain"
)

// IdentityRepository persists identities. FindByUsername returns
// domain.ErrIdentityNotFound when no row matches; Create returns
// domain.ErrIdentityExists on a duplicate username.
type IdentityRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Identity, error)
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	Update(ctx context.Context, identity *domain.Identity) error
	UpdateRole(ctx context.Context, username string, role domain.Role) (*domain.Identity, error)
	DeleteByUsername(ctx context.Context, username string) error
	List(ctx context.Context) ([]*domain.Identity, error)
}
