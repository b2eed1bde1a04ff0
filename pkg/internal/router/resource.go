package router

import (
	"github.com/gin-gonic/gin"

	"github.com/lostyway/cloud-file-storage/pkg/internal/handle"
)

// RegisterResourceRoutes 注册资源操作相关路由.
func RegisterResourceRoutes(g *gin.RouterGroup, opts Options) {
	resourceRoutes := g.Group("/resource")
	{
		if opts.ResponseCache != nil {
			resourceRoutes.GET("", opts.ResponseCache, handle.GetResource)
		} else {
			resourceRoutes.GET("", handle.GetResource)
		}

		resourceRoutes.POST("", handle.UploadResource)
		resourceRoutes.DELETE("", handle.DeleteResource)

		// 下载与移动不缓存
		resourceRoutes.GET("/download", handle.DownloadResource)
		resourceRoutes.GET("/move", handle.MoveResource)
		resourceRoutes.GET("/search", handle.SearchResources)
	}
}
