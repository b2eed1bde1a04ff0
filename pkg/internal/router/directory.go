package router

import (
	"github.com/gin-gonic/gin"

	"github.com/lostyway/cloud-file-storage/pkg/internal/handle"
)

// RegisterDirectoryRoutes 注册目录操作相关路由.
func RegisterDirectoryRoutes(g *gin.RouterGroup, opts Options) {
	directoryRoutes := g.Group("/directory")
	{
		if opts.ResponseCache != nil {
			directoryRoutes.GET("", opts.ResponseCache, handle.ListDirectory)
		} else {
			directoryRoutes.GET("", handle.ListDirectory)
		}

		directoryRoutes.POST("", handle.CreateDirectory)
	}
}
