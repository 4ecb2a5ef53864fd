package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"breadit/internal/services"
	"breadit/internal/utils"

	"github.com/gin-gonic/gin"
)

// RetryAfterSeconds is sent with 409 answers to ledger conflicts.
const RetryAfterSeconds = 1

// JSONError writes {"error": message} with the given status.
func JSONError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// bindJSON 解析请求体，失败时按 code 返回校验错误
func bindJSON(c *gin.Context, obj interface{}, code int) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		JSONError(c, code, err.Error())
		return false
	}
	return true
}

// RenderError maps a service error onto an HTTP answer. Anything unknown is
// logged and answered with fallback.
func RenderError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		JSONError(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, services.ErrNotFound):
		JSONError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		JSONError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrConflict):
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
		JSONError(c, http.StatusConflict, "Vote conflicted with a concurrent request. Please try again.")
	case errors.Is(err, services.ErrAlreadySubscribed),
		errors.Is(err, services.ErrNotSubscribed),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrSubredditExists),
		errors.Is(err, services.ErrEmailTaken):
		JSONError(c, http.StatusConflict, msg(err))
	case errors.Is(err, services.ErrOwnSubreddit),
		errors.Is(err, services.ErrEmptyTitle),
		errors.Is(err, services.ErrWeakPassword):
		JSONError(c, http.StatusBadRequest, msg(err))
	case errors.Is(err, services.ErrEmptyText):
		JSONError(c, http.StatusUnprocessableEntity, msg(err))
	case errors.Is(err, services.ErrInvalidLogin):
		JSONError(c, http.StatusUnauthorized, msg(err))
	default:
		log.Printf("[%s] %s %s: %v", utils.RequestID(c.Request.Context()), c.Request.Method, c.Request.URL.Path, err)
		JSONError(c, http.StatusInternalServerError, fallback)
	}
}

// msg 首字母大写
func msg(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
