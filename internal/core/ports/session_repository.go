package ports

import (
	"context"
	"time"

	"github.com/podfetch/authgate/internal/core/domain"
)

// SessionRepository persists sessions keyed by their identifier only.
// FindByID returns domain.ErrSessionNotFound for unknown identifiers and
// Create returns domain.ErrSessionExists on an identifier collision.
type SessionRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	Create(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}

// ExpiringSessionRepository is implemented by stores that cannot expire
// records on their own and need a periodic purge.
type ExpiringSessionRepository interface {
	SessionRepository
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
