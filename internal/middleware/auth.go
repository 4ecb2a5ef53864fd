package middleware

import (
	"net/http"
	"strings"

	"breadit/internal/models"
	"breadit/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CheckUserKey = "user"

// SessionUserKey is the session field holding the logged-in user's id.
const SessionUserKey = "user_id"

// RequireUser ensures a user is logged in
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// LoadUser retrieves the user from the session cookie, or from a bearer
// token when there is no session, and sets it on the context.
func LoadUser(db *gorm.DB, jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := sessionUserID(c)
		if userID == "" {
			userID = bearerUserID(c, jwtSecret)
		}

		if userID != "" {
			var user models.User
			result := db.WithContext(c.Request.Context()).First(&user, "id = ?", userID)
			if result.Error == nil {
				c.Set(CheckUserKey, &user)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the user set by LoadUser, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CheckUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// CurrentUserID is "" for anonymous requests.
func CurrentUserID(c *gin.Context) string {
	if user := CurrentUser(c); user != nil {
		return user.ID
	}
	return ""
}

func sessionUserID(c *gin.Context) string {
	id, _ := sessions.Default(c).Get(SessionUserKey).(string)
	return id
}

func bearerUserID(c *gin.Context, secret []byte) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	id, err := utils.ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return ""
	}
	return id
}
