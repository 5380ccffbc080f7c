package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/podfetch/authgate/internal/core/domain"
	"github.com/podfetch/authgate/internal/core/ports"
)

// IdentityService manages stored identities. The bootstrap username is
// reserved: it can never be created, updated or deleted through here.
type IdentityService struct {
	repo     ports.IdentityRepository
	hasher   PasswordHasher
	resolver *IdentityResolver
	now      func() time.Time
	log      zerolog.Logger
}

func NewIdentityService(repo ports.IdentityRepository, hasher PasswordHasher, resolver *IdentityResolver, log zerolog.Logger) *IdentityService {
	return &IdentityService{
		repo:     repo,
		hasher:   hasher,
		resolver: resolver,
		now:      time.Now,
		log:      log,
	}
}

func (s *IdentityService) Create(ctx context.Context, in ports.CreateIdentityInput) (*domain.IdentityView, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if s.resolver.IsBootstrap(username) {
		return nil, fmt.Errorf("create %q: %w", username, domain.ErrReservedUsername)
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}

	identity := &domain.Identity{
		Username:        username,
		Role:            role,
		ExplicitConsent: in.ExplicitConsent,
		CreatedAt:       s.now().UTC(),
	}
	if in.Password != "" {
		digest, err := s.hasher.Digest(in.Password)
		if err != nil {
			return nil, err
		}
		identity.PasswordDigest = &digest
	}

	created, err := s.repo.Create(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("create %q: %w", username, err)
	}

	s.log.Info().Str("username", created.Username).Str("role", created.Role.String()).Msg("identity created")
	view := created.View()
	return &view, nil
}

// Get resolves through the bootstrap shadow, like login does.
func (s *IdentityService) Get(ctx context.Context, username string) (*domain.IdentityView, error) {
	identity, err := s.resolver.Resolve(ctx, username)
	if err != nil {
		return nil, err
	}
	view := identity.View()
	return &view, nil
}

func (s *IdentityService) Delete(ctx context.Context, username string) error {
	if s.resolver.IsBootstrap(username) {
		return fmt.Errorf("delete %q: %w", username, domain.ErrReservedUsername)
	}
	if err := s.repo.DeleteByUsername(ctx, username); err != nil {
		return fmt.Errorf("delete %q: %w", username, err)
	}
	s.log.Info().Str("username", username).Msg("identity deleted")
	return nil
}

func (s *IdentityService) UpdateRole(ctx context.Context, username, role string) (*domain.IdentityView, error) {
	if s.resolver.IsBootstrap(username) {
		return nil, fmt.Errorf("update role of %q: %w", username, domain.ErrReservedUsername)
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateRole(ctx, username, parsed)
	if err != nil {
		return nil, fmt.Errorf("update role of %q: %w", username, err)
	}
	s.log.Info().Str("username", username).Str("role", parsed.String()).Msg("identity role updated")
	view := updated.View()
	return &view, nil
}

func (s *IdentityService) Update(ctx context.Context, identity *domain.Identity) error {
	if s.resolver.IsBootstrap(identity.Username) {
		return fmt.Errorf("update %q: %w", identity.Username, domain.ErrReservedUsername)
	}
	if _, err := domain.ParseRole(identity.Role.String()); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, identity); err != nil {
		return fmt.Errorf("update %q: %w", identity.Username, err)
	}
	return nil
}

func (s *IdentityService) List(ctx context.Context) ([]domain.IdentityView, error) {
	identities, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	views := make([]domain.IdentityView, 0, len(identities))
	for _, identity := range identities {
		views = append(views, identity.View())
	}
	return views, nil
}
