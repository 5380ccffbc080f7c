package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/podfetch/authgate/internal/api/middleware"
	"github.com/podfetch/authgate/internal/core/domain"
)

// ctxUsername returns the identity asserted by the identity middleware. When
// none was asserted the caller has no "self" to look up.
func ctxUsername(c echo.Context) (string, error) {
	name := middleware.Username(c)
	if name == nil {
		return "", domain.ErrIdentityNotFound
	}
	return *name, nil
}
