package middleware

import (
	"net/http"

	"acquisitions/internal/logutil"

	"github.com/gin-gonic/gin"
)

// ErrorHandler is the catch-all for errors handlers attach with c.Error.
// Details go to the log only; the client always gets the same 500 body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		log := logutil.GetOrDefault(c.Request.Context())
		for _, e := range c.Errors {
			log.Error().Err(e.Err).Str("path", c.FullPath()).Msg("unhandled request error")
		}
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		}
	}
}
