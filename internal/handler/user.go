package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fleetfilm/fleetfilm-api/internal/model"
	"github.com/fleetfilm/fleetfilm-api/internal/repository"
)

// UserHandler holds the admin-only user management endpoints.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: u}
}

type updateRoleReq struct {
	Role string `json:"role"`
}

// UpdateRole promotes or demotes a user: PUT /v1/users/:id/role. Role
// changes take effect on the user's next token refresh.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be MEMBER, COMMITTEE or ADMIN"})
	}

	// Self-demotion is blocked so the club can't lock itself out of admin.
	if uid, _ := c.Get("user_id").(uint64); uid == id && role != model.RoleAdmin {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot change own admin role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update role failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "role": role})
}
