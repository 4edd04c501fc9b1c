package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/fuchsia74/assistant-gateway/common/helper"
	"github.com/fuchsia74/assistant-gateway/common/logger"
)

func RelayPanicRecover() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Logger.Error("panic detected",
					zap.Any("panic", err),
					zap.String("stacktrace", string(debug.Stack())),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path))
				if !c.Writer.Written() {
					c.JSON(http.StatusInternalServerError, gin.H{
						"error": gin.H{
							"message": helper.MessageWithRequestId(
								fmt.Sprintf("Panic detected, error: %v", err),
								c.GetString(helper.RequestIdKey)),
							"type": "gateway_panic",
						},
					})
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}
