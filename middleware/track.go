package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fuchsia74/assistant-gateway/common/graceful"
)

// TrackRequest counts the request as in-flight for the whole handler chain,
// including long-running streaming handlers, so Drain can wait for it.
// Requests arriving while the server drains are rejected up front.
func TrackRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if graceful.IsDraining() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": gin.H{
					"message": "server is shutting down",
					"type":    "gateway_draining",
				},
			})
			return
		}
		done := graceful.BeginRequest()
		defer done()
		c.Next()
	}
}
