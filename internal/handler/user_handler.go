package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"blogdesk/internal/errors"
	"blogdesk/internal/model"
	"blogdesk/internal/service"
)

// UserHandler serves user administration.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateRoleRequest carries the new role of a user.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

var roleRules = []fieldRule{
	{"Role", "", "Invalid role. Must be 'admin' or 'user'"},
}

// UsersResponse lists users.
type UsersResponse struct {
	Users []model.User `json:"users"`
}

// UserResponse wraps an updated user.
type UserResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UsersResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return respondError(err, "Failed to fetch users")
	}
	return c.JSON(http.StatusOK, UsersResponse{Users: users})
}

// UpdateRole godoc
// @Summary Change a user's role
// @Description The new role applies from the user's next login.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body UpdateRoleRequest true "Role"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/users/{id} [put]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id := c.Param("id")
	if !model.ValidID(id) {
		return respondError(errors.Validation("Invalid user ID"), "")
	}

	var req UpdateRoleRequest
	normalize := func() { req.Role = strings.ToLower(strings.TrimSpace(req.Role)) }
	if err := bindAndValidate(c, &req, normalize, roleRules); err != nil {
		return respondError(err, invalidBody)
	}

	user, err := h.svc.UpdateRole(c.Request().Context(), actorID(c), id, model.Role(req.Role))
	if err != nil {
		return respondError(err, "Failed to update user role")
	}
	return c.JSON(http.StatusOK, UserResponse{Message: "User role updated successfully", User: user})
}
