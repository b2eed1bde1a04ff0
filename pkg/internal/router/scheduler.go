package router

import (
	"github.com/gin-gonic/gin"

	"github.com/lostyway/cloud-file-storage/pkg/internal/handle"
)

// RegisterSchedulerRoutes 注册后台任务观测路由.
func RegisterSchedulerRoutes(g *gin.RouterGroup) {
	g.GET("/scheduler/jobs", handle.SchedulerJobs)
}
