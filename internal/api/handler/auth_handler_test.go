package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/podfetch/authgate/internal/api/metrics"
	"github.com/podfetch/authgate/internal/core/domain"
	"github.com/podfetch/authgate/internal/core/ports"
)

type stubAuthService struct {
	loginFn  func(ctx context.Context, req ports.LoginRequest) (*ports.LoginResult, error)
	logoutFn func(ctx context.Context, sessionCookie string) (bool, error)
}

func (s *stubAuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.LoginResult, error) {
	return s.loginFn(ctx, req)
}

func (s *stubAuthService) Authenticate(context.Context, string, string) (string, error) {
	return "", domain.ErrUnauthenticated
}

func (s *stubAuthService) Logout(ctx context.Context, sessionCookie string) (bool, error) {
	return s.logoutFn(ctx, sessionCookie)
}

func newLoginContext(req *http.Request, username string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/auth/:username/login.json")
	c.SetParamNames("username")
	c.SetParamValues(username)
	return c, rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestAuthHandler_Login_IssuesSessionCookie(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, req ports.LoginRequest) (*ports.LoginResult, error) {
			if req.Username != "alice" || req.Authorization != "Basic YWxpY2U6cHcx" || req.SessionCookie != "" {
				t.Fatalf("unexpected request: %+v", req)
			}
			return &ports.LoginResult{
				Username: "alice",
				Method:   ports.LoginViaCredentials,
				Session:  &domain.Session{ID: "abc123", Username: "alice"},
			}, nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	req := httptest.NewRequest(http.MethodPost, "/auth/alice/login.json", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic YWxpY2U6cHcx")
	c, rec := newLoginContext(req, "alice")

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	ck := findCookie(rec, "sessionid")
	if ck == nil {
		t.Fatalf("expected sessionid cookie")
	}
	if ck.Value != "abc123" || ck.Path != "/api" || !ck.HttpOnly || ck.Secure || ck.SameSite != http.SameSiteStrictMode {
		t.Fatalf("unexpected cookie: %+v", ck)
	}
}

func TestAuthHandler_Login_ReissuesPresentedCookie(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, req ports.LoginRequest) (*ports.LoginResult, error) {
			if req.SessionCookie != "sid-1" {
				t.Fatalf("cookie not forwarded: %+v", req)
			}
			return &ports.LoginResult{
				Username: "alice",
				Method:   ports.LoginViaSession,
				Session:  &domain.Session{ID: "sid-1", Username: "alice"},
			}, nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	req := httptest.NewRequest(http.MethodPost, "/auth/alice/login.json", nil)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: "sid-1"})
	c, rec := newLoginContext(req, "alice")

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if ck := findCookie(rec, "sessionid"); ck == nil || ck.Value != "sid-1" {
		t.Fatalf("expected same session id, got %+v", ck)
	}
}

func TestAuthHandler_Login_BootstrapHasNoCookie(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, ports.LoginRequest) (*ports.LoginResult, error) {
			return &ports.LoginResult{Username: "admin", Method: ports.LoginViaBootstrap}, nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	req := httptest.NewRequest(http.MethodPost, "/auth/admin/login.json", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic YWRtaW46c2VjcmV0")
	c, rec := newLoginContext(req, "admin")

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Set-Cookie") != "" {
		t.Fatalf("expected no Set-Cookie, got %q", rec.Header().Get("Set-Cookie"))
	}
}

func TestAuthHandler_Login_SecureAndExpiry(t *testing.T) {
	exp := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(context.Context, ports.LoginRequest) (*ports.LoginResult, error) {
			return &ports.LoginResult{
				Username: "alice",
				Method:   ports.LoginViaCredentials,
				Session:  &domain.Session{ID: "s", Username: "alice", ExpiresAt: &exp},
			}, nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{Secure: true})

	c, rec := newLoginContext(httptest.NewRequest(http.MethodPost, "/", nil), "alice")
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	ck := findCookie(rec, "sessionid")
	if ck == nil || !ck.Secure || !ck.Expires.Equal(exp) {
		t.Fatalf("unexpected cookie: %+v", ck)
	}
}

func TestAuthHandler_Login_RejectedReturnsError(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, ports.LoginRequest) (*ports.LoginResult, error) {
			return nil, fmt.Errorf("%w: bad_password", domain.ErrUnauthenticated)
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	c, rec := newLoginContext(httptest.NewRequest(http.MethodPost, "/", nil), "alice")
	err := h.Login(c)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if rec.Header().Get("Set-Cookie") != "" {
		t.Fatalf("no cookie expected on rejection")
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	var revoked string
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, sid string) (bool, error) {
			revoked = sid
			return true, nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	req := httptest.NewRequest(http.MethodPost, "/auth/alice/logout.json", nil)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: "sid-9"})
	c, rec := newLoginContext(req, "alice")

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if revoked != "sid-9" {
		t.Fatalf("revoked %q, want sid-9", revoked)
	}
	ck := findCookie(rec, "sessionid")
	if ck == nil || ck.MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", ck)
	}
}

func TestAuthHandler_Logout_WithoutCookie(t *testing.T) {
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, sid string) (bool, error) {
			if sid != "" {
				t.Fatalf("unexpected sid %q", sid)
			}
			return false, nil
		},
	}
	h := NewAuthHandler(stub, CookieConfig{})

	c, rec := newLoginContext(httptest.NewRequest(http.MethodPost, "/", nil), "alice")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Header().Get("Set-Cookie") != "" {
		t.Fatalf("code=%d set-cookie=%q", rec.Code, rec.Header().Get("Set-Cookie"))
	}
}

func TestAuthHandler_Logout_UnknownSessionIsNotCounted(t *testing.T) {
	stub := &stubAuthService{
		logoutFn: func(context.Context, string) (bool, error) { return false, nil },
	}
	h := NewAuthHandler(stub, CookieConfig{})
	before := testutil.ToFloat64(metrics.SessionsRevokedTotal)

	req := httptest.NewRequest(http.MethodPost, "/auth/alice/logout.json", nil)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: "gone"})
	c, rec := newLoginContext(req, "alice")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if got := testutil.ToFloat64(metrics.SessionsRevokedTotal); got != before {
		t.Fatalf("revoked counter moved from %v to %v", before, got)
	}
	if ck := findCookie(rec, "sessionid"); ck == nil || ck.MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", ck)
	}
}
