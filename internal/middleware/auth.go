package middleware

import (
	"net/http"
	"strings"

	"authgate/internal/pkg/jwt"
	"authgate/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// JWTAuth validates the Bearer access token and stuffs its claims into the
// gin context for downstream handlers.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			c.Abort()
			return
		}

		if !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be Bearer token")
			c.Abort()
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			// expired vs malformed is not distinguished for the client
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("name", claims.Name)
		c.Set("roles", claims.Roles)
		if len(claims.Roles) > 0 {
			c.Set("role", claims.Roles[0])
		}

		c.Next()
	}
}
