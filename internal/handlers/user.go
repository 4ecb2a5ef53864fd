package handlers

import (
	"net/http"
	"regexp"

	"breadit/internal/middleware"
	"breadit/internal/services"

	"github.com/gin-gonic/gin"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type usernameRequest struct {
	Name string `json:"name" binding:"required,min=3,max=20"`
}

// Me 当前登录用户
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

// UpdateUsername 修改用户名
func (h *UserHandler) UpdateUsername(c *gin.Context) {
	var req usernameRequest
	if !bindJSON(c, &req, http.StatusBadRequest) {
		return
	}
	if !usernamePattern.MatchString(req.Name) {
		JSONError(c, http.StatusBadRequest, "Username may only contain letters, numbers and underscores")
		return
	}

	if err := h.users.UpdateUsername(c.Request.Context(), middleware.CurrentUserID(c), req.Name); err != nil {
		RenderError(c, err, "Could not update username. Please try again later.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Username updated"})
}
