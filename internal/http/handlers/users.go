package handlers

import (
	"net/http"

	"schoolcampus/internal/domain/models"
	"schoolcampus/internal/http/middleware"
	"schoolcampus/internal/services"

	"github.com/gin-gonic/gin"
)

// UserHandler adds the account-specific endpoints on top of the generic
// controller.
type UserHandler struct {
	*Controller[models.User]
	Users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{
		Controller: NewController(users.Service, services.UserSearchKeys, services.UserHideKeys),
		Users:      users,
	}
}

// HandleCreate routes through Register so passwords are always hashed.
func (h *UserHandler) HandleCreate(c *gin.Context) {
	user, err := h.Users.Register(c.Request.Context(), bodyMap(c), middleware.GetAuthUser(c))
	if err != nil {
		failWrite(c, err, "Creation failed")
		return
	}
	Success(c, http.StatusCreated, "Created successfully", user)
}

// HandleGetStats reports the role breakdown alongside the base rollup.
func (h *UserHandler) HandleGetStats(c *gin.Context) {
	stats, err := h.Users.GetUserStats(c.Request.Context(), ExtractFilter(c))
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Failed to get statistics", err)
		return
	}
	Success(c, http.StatusOK, "Statistics retrieved successfully", stats)
}

// HandleToggleStatus flips isActive on one account.
func (h *UserHandler) HandleToggleStatus(c *gin.Context) {
	id := c.Param("_id")
	if id == "" {
		Fail(c, http.StatusBadRequest, "ID is required", nil)
		return
	}

	user, err := h.Users.ToggleStatus(c.Request.Context(), id, middleware.GetAuthUser(c))
	if err != nil {
		failWrite(c, err, "Status toggle failed")
		return
	}
	if user == nil {
		Fail(c, http.StatusNotFound, "Record not found", nil)
		return
	}
	Success(c, http.StatusOK, "Status updated successfully", user)
}
