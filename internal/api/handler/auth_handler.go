package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/podfetch/authgate/internal/api/metrics"
	"github.com/podfetch/authgate/internal/api/middleware"
	"github.com/podfetch/authgate/internal/core/domain"
	"github.com/podfetch/authgate/internal/core/ports"
)

// DefaultCookiePath scopes the session cookie when CookieConfig.Path is empty.
const DefaultCookiePath = "/api"

// CookieConfig controls the attributes of issued session cookies.
type CookieConfig struct {
	Secure bool
	// Path must cover every route that reads the cookie.
	Path string
}

func (c CookieConfig) path() string {
	if c.Path == "" {
		return DefaultCookiePath
	}
	return c.Path
}

// AuthHandler serves the login and logout endpoints.
type AuthHandler struct {
	authService ports.AuthService
	cookie      CookieConfig
}

func NewAuthHandler(authService ports.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

// Login authenticates the caller by session cookie or Basic credentials.
//
// @Summary      Login
// @Description  Accepts a valid session cookie, the bootstrap credentials, or stored credentials. A session cookie is issued unless the bootstrap credentials were used.
// @Tags         auth
// @Param        username  path  string  true  "Username claimed by the caller"
// @Success      200
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /auth/{username}/login.json [post]
func (h *AuthHandler) Login(c echo.Context) error {
	res, err := h.authService.Login(c.Request().Context(), ports.LoginRequest{
		Username:      c.Param("username"),
		SessionCookie: middleware.SessionCookieValue(c),
		Authorization: c.Request().Header.Get(echo.HeaderAuthorization),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			metrics.LoginsTotal.WithLabelValues("rejected", "none").Inc()
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("accepted", res.Method).Inc()
	if res.Method == ports.LoginViaCredentials {
		metrics.SessionsCreatedTotal.Inc()
	}
	if res.Session != nil {
		c.SetCookie(h.sessionCookie(res.Session))
	}
	return c.NoContent(http.StatusOK)
}

// Logout revokes the caller's session and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Param        username  path  string  true  "Username"
// @Success      200
// @Failure      500  {object}  errorResponse
// @Router       /auth/{username}/logout.json [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sid := middleware.SessionCookieValue(c)
	revoked, err := h.authService.Logout(c.Request().Context(), sid)
	if err != nil {
		return err
	}

	if revoked {
		metrics.SessionsRevokedTotal.Inc()
	}
	if sid != "" {
		c.SetCookie(h.expiredCookie())
	}
	return c.NoContent(http.StatusOK)
}

func (h *AuthHandler) sessionCookie(s *domain.Session) *http.Cookie {
	cookie := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    s.ID,
		Path:     h.cookie.path(),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	if s.ExpiresAt != nil {
		cookie.Expires = s.ExpiresAt.UTC()
	}
	return cookie
}

func (h *AuthHandler) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     h.cookie.path(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
