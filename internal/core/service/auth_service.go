package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/podfetch/authgate/internal/core/domain"
	"github.com/podfetch/authgate/internal/core/ports"
)

// AuthConfig is the slice of process configuration the login engine reads.
// It is built once at start-up and never mutated.
type AuthConfig struct {
	BootstrapUsername string
	BootstrapPassword string
}

// HasBootstrap reports whether a complete bootstrap credential pair is set.
func (c AuthConfig) HasBootstrap() bool {
	return c.BootstrapUsername != "" && c.BootstrapPassword != ""
}

// AuthService decides whether a login attempt is accepted and mints the
// session that backs the cookie. It holds no mutable state of its own.
type AuthService struct {
	resolver    *IdentityResolver
	sessions    *SessionManager
	hasher      PasswordHasher
	cfg         AuthConfig
	dummyDigest string
	log         zerolog.Logger
}

func NewAuthService(
	resolver *IdentityResolver,
	sessions *SessionManager,
	hasher PasswordHasher,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	// Compared against when the claimed identity is unknown so both paths pay
	// for one digest comparison.
	dummy, err := hasher.Digest("authgate-unknown-identity")
	if err != nil {
		log.Error().Err(err).Msg("could not precompute the unknown-identity digest")
	}
	return &AuthService{
		resolver:    resolver,
		sessions:    sessions,
		hasher:      hasher,
		cfg:         cfg,
		dummyDigest: dummy,
		log:         log,
	}
}

// Login runs one login attempt for req.Username.
//
// A known session cookie is accepted as-is. An unknown or expired cookie
// falls through to Basic-Auth evaluation. The bootstrap credentials are
// accepted without creating a session; stored credentials are verified
// against their digest and produce a fresh session.
//
// Every rejection wraps domain.ErrUnauthenticated. Store failures are
// returned unwrapped from that sentinel and must end the request.
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.LoginResult, error) {
	if req.SessionCookie != "" {
		session, err := s.sessions.Find(ctx, req.SessionCookie)
		switch {
		case err == nil:
			s.log.Debug().Str("username", session.Username).Msg("login accepted via session cookie")
			return &ports.LoginResult{Username: session.Username, Method: ports.LoginViaSession, Session: session}, nil
		case errors.Is(err, domain.ErrSessionNotFound):
			s.log.Debug().Str("username", req.Username).Msg("stale session cookie, falling back to basic auth")
		default:
			return nil, fmt.Errorf("login: find session: %w", err)
		}
	}

	username, password, err := ParseBasicAuth(req.Authorization)
	if err != nil {
		return nil, s.reject(req.Username, "malformed_credentials", err)
	}
	if username != req.Username {
		return nil, s.reject(req.Username, "username_mismatch", nil)
	}

	if s.isBootstrapCredentials(username, password) {
		s.log.Info().Str("username", username).Msg("login accepted via bootstrap credentials")
		return &ports.LoginResult{Username: username, Method: ports.LoginViaBootstrap}, nil
	}

	identity, err := s.verifyStored(ctx, username, password)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Create(ctx, identity.Username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("username", identity.Username).Msg("login accepted, session issued")
	return &ports.LoginResult{Username: identity.Username, Method: ports.LoginViaCredentials, Session: session}, nil
}

// Authenticate resolves the identity behind a request without issuing a
// session. It applies the same cookie, bootstrap and digest rules as Login
// but has no path username to match against.
func (s *AuthService) Authenticate(ctx context.Context, sessionCookie, authorization string) (string, error) {
	if sessionCookie != "" {
		session, err := s.sessions.Find(ctx, sessionCookie)
		switch {
		case err == nil:
			return session.Username, nil
		case errors.Is(err, domain.ErrSessionNotFound):
		default:
			return "", fmt.Errorf("authenticate: find session: %w", err)
		}
	}

	username, password, err := ParseBasicAuth(authorization)
	if err != nil {
		return "", s.reject("", "malformed_credentials", err)
	}
	if s.isBootstrapCredentials(username, password) {
		return username, nil
	}

	identity, err := s.verifyStored(ctx, username, password)
	if err != nil {
		return "", err
	}
	return identity.Username, nil
}

// Logout revokes the session behind the cookie, if any, and reports whether a
// stored session was removed.
func (s *AuthService) Logout(ctx context.Context, sessionCookie string) (bool, error) {
	if sessionCookie == "" {
		return false, nil
	}
	revoked, err := s.sessions.Revoke(ctx, sessionCookie)
	if err != nil {
		return false, fmt.Errorf("logout: %w", err)
	}
	return revoked, nil
}

func (s *AuthService) isBootstrapCredentials(username, password string) bool {
	if !s.cfg.HasBootstrap() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.BootstrapUsername))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.BootstrapPassword))
	return userOK&passOK == 1
}

func (s *AuthService) verifyStored(ctx context.Context, username, password string) (*domain.Identity, error) {
	identity, err := s.resolver.Resolve(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			s.hasher.Matches(s.dummyDigest, password)
			return nil, s.reject(username, "unknown_identity", nil)
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	if identity.PasswordDigest == nil {
		return nil, s.reject(username, "no_password_digest", nil)
	}
	if !s.hasher.Matches(*identity.PasswordDigest, password) {
		return nil, s.reject(username, "bad_password", nil)
	}
	return identity, nil
}

func (s *AuthService) reject(username, reason string, cause error) error {
	ev := s.log.Info().Str("username", username).Str("reason", reason)
	if cause != nil {
		ev = ev.Err(cause)
	}
	ev.Msg("authentication rejected")
	return fmt.Errorf("%w: %s", domain.ErrUnauthenticated, reason)
}
