package handlers

import (
	"log"
	"net/http"
	"time"

	"breadit/internal/middleware"
	"breadit/internal/services"
	"breadit/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	users     *services.UserService
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthHandler(users *services.UserService, jwtSecret []byte, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req, http.StatusBadRequest) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		RenderError(c, err, "Could not register. Please try again later.")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login 写入 session 并返回 bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, http.StatusBadRequest) {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RenderError(c, err, "Could not log in. Please try again later.")
		return
	}

	token, err := utils.IssueToken(h.jwtSecret, user.ID, h.tokenTTL)
	if err != nil {
		RenderError(c, err, "Could not log in. Please try again later.")
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		log.Printf("Failed to save session for %s: %v", user.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Status(http.StatusNoContent)
}
