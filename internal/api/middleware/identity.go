package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/podfetch/authgate/internal/api/metrics"
	"github.com/podfetch/authgate/internal/core/domain"
)

const (
	// SessionCookie is the name of the cookie carrying the session identifier.
	SessionCookie = "sessionid"
	// ProxyUserHeader carries the identity asserted by a trusted front proxy.
	ProxyUserHeader = "X-Remote-User"

	usernameKey = "username"
)

// Mode selects how the request identity is asserted.
type Mode int

const (
	ModeNone Mode = iota
	ModeBasic
	ModeProxy
)

func (m Mode) String() string {
	switch m {
	case ModeBasic:
		return "basic"
	case ModeProxy:
		return "proxy"
	default:
		return "none"
	}
}

// Authenticator verifies a session cookie or Basic credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionCookie, authorization string) (string, error)
}

// Asserter validates the proxy identity header.
type Asserter interface {
	Assert(header string) (string, error)
}

// Identity attaches the asserted username to the context. In ModeNone the
// request passes through without an identity.
func Identity(mode Mode, auth Authenticator, proxy Asserter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var (
				name string
				err  error
			)
			switch mode {
			case ModeNone:
				return next(c)
			case ModeProxy:
				name, err = proxy.Assert(c.Request().Header.Get(ProxyUserHeader))
			case ModeBasic:
				name, err = auth.Authenticate(c.Request().Context(), SessionCookieValue(c), c.Request().Header.Get(echo.HeaderAuthorization))
			default:
				return fmt.Errorf("unknown identity mode %d", mode)
			}
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					metrics.RequestAuthFailuresTotal.WithLabelValues(mode.String()).Inc()
					if mode == ModeBasic {
						c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Basic realm="authgate"`)
					}
				}
				return err
			}

			c.Set(usernameKey, name)
			return next(c)
		}
	}
}

// Username returns the identity asserted for this request, or nil when none
// was asserted.
func Username(c echo.Context) *string {
	name, ok := c.Get(usernameKey).(string)
	if !ok {
		return nil
	}
	return &name
}

// SessionCookieValue returns the session identifier sent by the client, or
// "" when the cookie is absent.
func SessionCookieValue(c echo.Context) string {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil || cookie == nil {
		return ""
	}
	return cookie.Value
}
