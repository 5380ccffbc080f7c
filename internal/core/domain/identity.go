package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of permission tags an identity can carry. It is
// stored as its string form.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleUploader Role = "uploader"
	RoleRegular  Role = "user"
)

// BootstrapIdentityID is the sentinel ID of the configuration-defined admin.
const BootstrapIdentityID = "9999"

// ParseRole converts a stored or user-supplied tag into a Role. Matching is
// case-sensitive.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleUploader, RoleRegular:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

func (r Role) String() string { return string(r) }

// Identity models a named principal. PasswordDigest is nil for identities
// authenticated elsewhere and for the bootstrap admin.
type Identity struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Role            Role      `json:"role"`
	PasswordDigest  *string   `json:"-"`
	ExplicitConsent bool      `json:"explicitConsent"`
	CreatedAt       time.Time `json:"createdAt"`
}

// IdentityView is an Identity without its password digest.
type IdentityView struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Role            Role      `json:"role"`
	ExplicitConsent bool      `json:"explicitConsent"`
	CreatedAt       time.Time `json:"createdAt"`
}

// View strips the digest.
func (i *Identity) View() IdentityView {
	return IdentityView{
		ID:              i.ID,
		Username:        i.Username,
		Role:            i.Role,
		ExplicitConsent: i.ExplicitConsent,
		CreatedAt:       i.CreatedAt,
	}
}

// NewBootstrapIdentity synthesizes the in-memory admin named by configuration.
// It is never persisted.
func NewBootstrapIdentity(username string) *Identity {
	return &Identity{
		ID:              BootstrapIdentityID,
		Username:        username,
		Role:            RoleAdmin,
		ExplicitConsent: true,
	}
}
