package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fuchsia74/assistant-gateway/common"
	"github.com/fuchsia74/assistant-gateway/common/config"
)

func GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data": gin.H{
			"version":    common.Version,
			"start_time": common.StartTime,
			"deployment": config.DeploymentName,
		},
	})
}
