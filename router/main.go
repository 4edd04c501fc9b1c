package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fuchsia74/assistant-gateway/common/config"
	"github.com/fuchsia74/assistant-gateway/controller"
	"github.com/fuchsia74/assistant-gateway/middleware"
	"github.com/fuchsia74/assistant-gateway/monitor"
)

func SetRouter(server *gin.Engine) {
	if config.EnablePrometheusMetrics {
		server.Use(monitor.GinMiddleware())
		server.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := server.Group("/api")
	api.GET("/status", controller.GetStatus)
	api.POST("/assistant",
		middleware.TrackRequest(),
		middleware.RelayPanicRecover(),
		controller.RelayAssistant,
	)
}
