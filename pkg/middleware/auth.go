// Package middleware 提供中间件
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lostyway/cloud-file-storage/pkg/configs"
	ctxPkg "github.com/lostyway/cloud-file-storage/pkg/context"
)

// AuthMiddleware 基于上游代理注入的请求头做租户身份提取。
//   - 要求请求头（默认 X-User-Id）携带数字租户标识
//   - 支持通过配置跳过某些路径（如 /metrics, /health）
//   - 开发模式可配置 dev_tenant 兜底.
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		raw := strings.TrimSpace(c.GetHeader(conf.Header))
		if raw == "" && conf.DevTenant > 0 {
			setTenant(c, conf.DevTenant)
			c.Next()

			return
		}

		tenantID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || tenantID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
			return
		}

		setTenant(c, tenantID)
		c.Next()
	}
}

// setTenant 同时写入 gin 与请求上下文，服务层只依赖后者.
func setTenant(c *gin.Context, tenantID int64) {
	c.Set(string(ctxPkg.TenantKey), tenantID)
	c.Request = c.Request.WithContext(ctxPkg.WithTenant(c.Request.Context(), tenantID))
}

// TenantFrom 从 gin 上下文取出租户标识.
func TenantFrom(c *gin.Context) (int64, bool) {
	v, ok := c.Get(string(ctxPkg.TenantKey))
	if !ok {
		return 0, false
	}

	id, ok := v.(int64)

	return id, ok
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
