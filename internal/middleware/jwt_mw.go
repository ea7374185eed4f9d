package middleware

import (
	"net/http"
	"strings"

	"acquisitions/internal/logutil"
	"acquisitions/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	AuthClaimsKey = "authClaims"
)

// JWTAuthMiddleware rejects requests without a valid session token. The token
// is read from the session cookie, falling back to an Authorization bearer
// header for non-browser clients.
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}

		claims, err := jwtUtil.Verify(tokenString)
		if err != nil {
			log := logutil.GetOrDefault(c.Request.Context())
			log.Debug().Err(err).Msg("rejected session token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set(AuthClaimsKey, claims)
		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by JWTAuthMiddleware
func ClaimsFromContext(c *gin.Context) (*utils.JWTClaims, bool) {
	v, exists := c.Get(AuthClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*utils.JWTClaims)
	return claims, ok
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(utils.SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}
