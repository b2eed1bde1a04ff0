package router

import (
	"github.com/gin-gonic/gin"

	"github.com/lostyway/cloud-file-storage/pkg/internal/handle"
)

// RegisterIntakeRoutes 注册文档入库相关路由.
func RegisterIntakeRoutes(g *gin.RouterGroup) {
	g.POST("/report", handle.ReportFile)
	g.GET("/status", handle.GetFileStatus)
	g.GET("/download/:fileId", handle.DownloadReported)
}
