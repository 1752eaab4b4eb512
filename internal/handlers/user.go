package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mizutanik/tasktree-api/internal/dto"
	apierrors "github.com/mizutanik/tasktree-api/internal/errors"
	"github.com/mizutanik/tasktree-api/internal/services"
)

// UserHandler serves the user directory.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers returns all user summaries.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	profiles := make([]dto.UserProfileDTO, len(users))
	for i, user := range users {
		profiles[i] = dto.ToUserProfileDTO(user)
	}

	c.JSON(http.StatusOK, profiles)
}
