package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Allow answers forward-auth probes from a reverse proxy. It runs behind the
// identity middleware and a guard, so reaching it means the request may
// proceed.
//
// @Summary      Forward-auth probe
// @Description  Returns 204 when the asserted identity passes the guard named by the path.
// @Tags         auth
// @Security     BasicAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /authorize/admin [get]
// @Router       /authorize/upload [get]
func Allow(c echo.Context) error {
	if name, err := ctxUsername(c); err == nil {
		c.Response().Header().Set("X-Auth-User", name)
	}
	return c.NoContent(http.StatusNoContent)
}
