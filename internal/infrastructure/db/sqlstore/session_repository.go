package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/podfetch/authgate/internal/core/domain"
)

// SessionRepository implements ports.ExpiringSessionRepository over the
// sessions table.
type SessionRepository struct {
	store *Store
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	var expiresAt sql.NullInt64
	if s.ExpiresAt != nil {
		expiresAt = sql.NullInt64{Int64: s.ExpiresAt.Unix(), Valid: true}
	}

	q := r.store.rebind(`INSERT INTO sessions (session_id, username, created_at, expires_at) VALUES (?, ?, ?, ?)`)
	if _, err := r.store.db.ExecContext(ctx, q, s.ID, s.Username, s.CreatedAt.Unix(), expiresAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSessionExists
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	var (
		s         = domain.Session{ID: id}
		createdAt int64
		expiresAt sql.NullInt64
	)

	q := r.store.rebind(`SELECT username, created_at, expires_at FROM sessions WHERE session_id = ?`)
	err := r.store.db.QueryRowContext(ctx, q, id).Scan(&s.Username, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	if expiresAt.Valid {
		exp := time.Unix(expiresAt.Int64, 0).UTC()
		s.ExpiresAt = &exp
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.store.db.ExecContext(ctx, r.store.rebind(`DELETE FROM sessions WHERE session_id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return expectOneRow(res, domain.ErrSessionNotFound)
}

// DeleteExpired removes sessions whose expiry is at or before now and reports
// how many were removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	q := r.store.rebind(`DELETE FROM sessions WHERE expires_at IS NOT NULL AND expires_at <= ?`)
	res, err := r.store.db.ExecContext(ctx, q, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
