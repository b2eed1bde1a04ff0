// Package router 管理路由配置，将路径绑定到 pkg/internal/handle 的处理器.
package router

import (
	"github.com/gin-gonic/gin"
)

// Options 路由装配选项.
type Options struct {
	// ResponseCache 只读接口的响应缓存中间件，nil 表示不启用.
	ResponseCache gin.HandlerFunc
}

// Register 将网关的全部业务路由绑定到传入的路由组.
func Register(g *gin.RouterGroup, opts Options) {
	RegisterResourceRoutes(g, opts)
	RegisterDirectoryRoutes(g, opts)
	RegisterIntakeRoutes(g)
	RegisterHealthCheckRoute(g)
	RegisterSchedulerRoutes(g)
}
