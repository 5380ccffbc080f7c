package ports

import (
	"context"

	"github.com/podfetch/authgate/internal/core/domain"
)

// LoginRequest carries what the login endpoint extracted from the request.
// Empty strings mean "absent".
type LoginRequest struct {
	Username      string
	SessionCookie string
	Authorization string
}

// Login methods reported in LoginResult.
const (
	LoginViaSession     = "session"
	LoginViaBootstrap   = "bootstrap"
	LoginViaCredentials = "credentials"
)

// LoginResult describes an accepted login. Session is nil when the bootstrap
// credentials were used, since that identity is stateless.
type LoginResult struct {
	Username string
	Method   string
	Session  *domain.Session
}

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Authenticate(ctx context.Context, sessionCookie, authorization string) (string, error)
	Logout(ctx context.Context, sessionCookie string) (bool, error)
}

// Guards gate privileged operations on an optionally asserted identity name.
// A nil name means no identity was asserted and the guard passes.
type Guards interface {
	RequireAdmin(ctx context.Context, username *string) error
	RequireAdminOrUploader(ctx context.Context, username *string) error
}
