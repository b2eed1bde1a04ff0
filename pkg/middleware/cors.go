package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lostyway/cloud-file-storage/pkg/configs"
)

// CORSMiddleware CORS中间件.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = append(config.AllowHeaders, "X-User-Id")
	config.AllowFiles = true
	config.ExposeHeaders = append(config.ExposeHeaders, "Content-Disposition")

	return cors.New(config)
}
