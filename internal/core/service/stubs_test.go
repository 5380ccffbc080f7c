package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/podfetch/authgate/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubIdentityRepo struct {
	users   map[string]*domain.Identity
	findErr error
	lookups int
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{users: make(map[string]*domain.Identity)}
}

func cloneIdentity(i *domain.Identity) *domain.Identity {
	if i == nil {
		return nil
	}
	clone := *i
	return &clone
}

func (r *stubIdentityRepo) FindByUsername(_ context.Context, username string) (*domain.Identity, error) {
	r.lookups++
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return cloneIdentity(u), nil
}

func (r *stubIdentityRepo) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	if _, exists := r.users[identity.Username]; exists {
		return nil, domain.ErrIdentityExists
	}
	copy := cloneIdentity(identity)
	if copy.ID == "" {
		copy.ID = "id-" + copy.Username
	}
	r.users[copy.Username] = cloneIdentity(copy)
	return cloneIdentity(copy), nil
}

func (r *stubIdentityRepo) Update(_ context.Context, identity *domain.Identity) error {
	if _, ok := r.users[identity.Username]; !ok {
		return domain.ErrIdentityNotFound
	}
	r.users[identity.Username] = cloneIdentity(identity)
	return nil
}

func (r *stubIdentityRepo) UpdateRole(_ context.Context, username string, role domain.Role) (*domain.Identity, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	u.Role = role
	return cloneIdentity(u), nil
}

func (r *stubIdentityRepo) DeleteByUsername(_ context.Context, username string) error {
	if _, ok := r.users[username]; !ok {
		return domain.ErrIdentityNotFound
	}
	delete(r.users, username)
	return nil
}

func (r *stubIdentityRepo) List(_ context.Context) ([]*domain.Identity, error) {
	out := make([]*domain.Identity, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneIdentity(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

type stubSessionRepo struct {
	sessions  map[string]*domain.Session
	findErr   error
	createErr []error // consumed one per Create call
	creates   int
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *stubSessionRepo) FindByID(_ context.Context, id string) (*domain.Session, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	s, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubSessionRepo) Create(_ context.Context, s *domain.Session) error {
	r.creates++
	if len(r.createErr) > 0 {
		err := r.createErr[0]
		r.createErr = r.createErr[1:]
		if err != nil {
			return err
		}
	}
	if _, exists := r.sessions[s.ID]; exists {
		return domain.ErrSessionExists
	}
	clone := *s
	r.sessions[s.ID] = &clone
	return nil
}

func (r *stubSessionRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var errStoreDown = errors.New("store down")

func testHasher() PasswordHasher {
	return BcryptHasher{Cost: bcrypt.MinCost}
}

func digestOf(h PasswordHasher, secret string) *string {
	d, err := h.Digest(secret)
	if err != nil {
		panic(err)
	}
	return &d
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) now() time.Time { return c.t }

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func nopLogger() zerolog.Logger { return zerolog.Nop() }
