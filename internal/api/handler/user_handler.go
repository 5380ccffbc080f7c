package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/podfetch/authgate/internal/core/ports"
)

// UserHandler handles HTTP requests for identity management.
type UserHandler struct {
	service ports.IdentityService
}

func NewUserHandler(service ports.IdentityService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BasicAuth
// @Success      200  {object}  listUsersResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	views, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listUsersResponse{Users: toUserResponses(views)})
}

// Create handles POST /users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	view, err := h.service.Create(c.Request().Context(), ports.CreateIdentityInput{
		Username:        req.Username,
		Password:        req.Password,
		Role:            req.Role,
		ExplicitConsent: req.ExplicitConsent,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(*view))
}

// UpdateRole handles PUT /users/:username/role.
//
// @Summary      Change a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BasicAuth
// @Param        username  path      string             true  "Username"
// @Param        body      body      updateRoleRequest  true  "New role"
// @Success      200       {object}  userResponse
// @Failure      400       {object}  errorResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /users/{username}/role [put]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	view, err := h.service.UpdateRole(c.Request().Context(), c.Param("username"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*view))
}

// Delete handles DELETE /users/:username.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BasicAuth
// @Param        username  path  string  true  "Username"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /users/{username} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("username")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /users/me.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BasicAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	view, err := h.service.Get(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*view))
}
