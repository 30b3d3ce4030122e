package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/panelmurah/ptero-store/pkg"
	"github.com/panelmurah/ptero-store/pkg/common"
	"github.com/panelmurah/ptero-store/pkg/utils"
	"github.com/redis/go-redis/v9"
)

const SessionKeyPrefix = "session:"

// Session is the payload stored in Redis per login token.
type Session struct {
	UserID   string       `json:"userId"`
	Username string       `json:"username"`
	Role     pkg.Role     `json:"role"`
}

// Auth returns Gin middleware that resolves a bearer session token against
// Redis and places the user identity into the request context.
func Auth(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if utils.IsEmpty(token) {
			abortUnauthorized(c, "missing session token")
			return
		}

		raw, err := redisClient.Get(c.Request.Context(), SessionKeyPrefix+token).Result()
		if err != nil {
			abortUnauthorized(c, "invalid or expired session")
			return
		}

		var session Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			abortUnauthorized(c, "invalid or expired session")
			return
		}

		c.Set(pkg.UserId, session.UserID)
		c.Set(pkg.Username, session.Username)
		c.Set(pkg.UserRole, string(session.Role))
		c.Next()
	}
}

// RequireAdmin gates a route group to admin sessions. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(pkg.UserRole) != string(pkg.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, common.ErrorResponse{
				Code:    common.ErrForbidden,
				Message: "admin access required",
			})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.Request.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, common.ErrorResponse{
		Code:    common.ErrUnauthorized,
		Message: msg,
	})
}
