package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/podfetch/authgate/internal/core/domain"
)

// IdentityRepository implements ports.IdentityRepository over the users table.
type IdentityRepository struct {
	store *Store
}

const identityColumns = "id, username, role, password, explicit_consent, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*domain.Identity, error) {
	var (
		i         domain.Identity
		role      string
		password  sql.NullString
		createdAt int64
	)
	if err := row.Scan(&i.ID, &i.Username, &role, &password, &i.ExplicitConsent, &createdAt); err != nil {
		return nil, err
	}
	i.Role = domain.Role(role)
	if password.Valid {
		i.PasswordDigest = &password.String
	}
	i.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &i, nil
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	created := *identity
	if created.ID == "" {
		created.ID = uuid.NewString()
	}

	var password sql.NullString
	if created.PasswordDigest != nil {
		password = sql.NullString{String: *created.PasswordDigest, Valid: true}
	}

	q := r.store.rebind(`INSERT INTO users (` + identityColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := r.store.db.ExecContext(ctx, q,
		created.ID, created.Username, created.Role.String(), password, created.ExplicitConsent, created.CreatedAt.Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrIdentityExists
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}
	return &created, nil
}

func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	q := r.store.rebind(`SELECT ` + identityColumns + ` FROM users WHERE username = ?`)
	i, err := scanIdentity(r.store.db.QueryRowContext(ctx, q, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return i, nil
}

func (r *IdentityRepository) Update(ctx context.Context, identity *domain.Identity) error {
	var password sql.NullString
	if identity.PasswordDigest != nil {
		password = sql.NullString{String: *identity.PasswordDigest, Valid: true}
	}

	q := r.store.rebind(`UPDATE users SET role = ?, password = ?, explicit_consent = ? WHERE username = ?`)
	res, err := r.store.db.ExecContext(ctx, q, identity.Role.String(), password, identity.ExplicitConsent, identity.Username)
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	return expectOneRow(res, domain.ErrIdentityNotFound)
}

func (r *IdentityRepository) UpdateRole(ctx context.Context, username string, role domain.Role) (*domain.Identity, error) {
	q := r.store.rebind(`UPDATE users SET role = ? WHERE username = ?`)
	res, err := r.store.db.ExecContext(ctx, q, role.String(), username)
	if err != nil {
		return nil, fmt.Errorf("update identity role: %w", err)
	}
	if err := expectOneRow(res, domain.ErrIdentityNotFound); err != nil {
		return nil, err
	}
	return r.FindByUsername(ctx, username)
}

func (r *IdentityRepository) DeleteByUsername(ctx context.Context, username string) error {
	res, err := r.store.db.ExecContext(ctx, r.store.rebind(`DELETE FROM users WHERE username = ?`), username)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return expectOneRow(res, domain.ErrIdentityNotFound)
}

func (r *IdentityRepository) List(ctx context.Context) ([]*domain.Identity, error) {
	rows, err := r.store.db.QueryContext(ctx, `SELECT `+identityColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var out []*domain.Identity
	for rows.Next() {
		i, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	return out, nil
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
