package ports

import (
	"context"

	"github.com/podfetch/authgate/internal/core/domain"
)

// CreateIdentityInput is the DTO for creating a stored identity.
type CreateIdentityInput struct {
	Username        string
	Password        string
	Role            string
	ExplicitConsent bool
}

// IdentityService manages stored identities.
type IdentityService interface {
	Create(ctx context.Context, in CreateIdentityInput) (*domain.IdentityView, error)
	Get(ctx context.Context, username string) (*domain.IdentityView, error)
	Delete(ctx context.Context, username string) error
	UpdateRole(ctx context.Context, username, role string) (*domain.IdentityView, error)
	Update(ctx context.Context, identity *domain.Identity) error
	List(ctx context.Context) ([]domain.IdentityView, error)
}
