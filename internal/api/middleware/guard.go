package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/podfetch/authgate/internal/api/metrics"
	"github.com/podfetch/authgate/internal/core/domain"
	"github.com/podfetch/authgate/internal/core/ports"
)

// RequireAdmin lets the request through only when the asserted identity is an
// admin, or when no identity was asserted.
func RequireAdmin(g ports.Guards) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := g.RequireAdmin(c.Request().Context(), Username(c)); err != nil {
				return denied("admin", err)
			}
			return next(c)
		}
	}
}

// RequireAdminOrUploader is RequireAdmin that also admits uploaders.
func RequireAdminOrUploader(g ports.Guards) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := g.RequireAdminOrUploader(c.Request().Context(), Username(c)); err != nil {
				return denied("admin_or_uploader", err)
			}
			return next(c)
		}
	}
}

func denied(guard string, err error) error {
	if errors.Is(err, domain.ErrForbidden) {
		metrics.GuardDenialsTotal.WithLabelValues(guard).Inc()
	}
	return err
}
