package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MohamedH1998/onbored-sub001/logging"
	"github.com/MohamedH1998/onbored-sub001/utils"
)

// AuthRequired accepts a service key in X-API-KEY (when one is configured) or
// a JWT from the jwt_token cookie or a Bearer Authorization header.
func AuthRequired(secret []byte, serviceKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if serviceKey != "" {
			if key := c.GetHeader("X-API-KEY"); key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(serviceKey)) == 1 {
				c.Set("user_id", "service")
				c.Next()
				return
			}
		}

		tokenString, err := c.Cookie("jwt_token")
		if err != nil || tokenString == "" {
			tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
			if tokenString == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
				return
			}
		}

		claims, err := utils.ValidateJWT(tokenString, secret)
		if err != nil {
			logging.Debug().Err(err).Msg("Rejected invalid JWT")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Next()
	}
}
