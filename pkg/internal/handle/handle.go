// Package handle 提供HTTP请求处理器的实现.
package handle

import (
	"github.com/gin-gonic/gin"

	ctxPkg "github.com/lostyway/cloud-file-storage/pkg/context"
	"github.com/lostyway/cloud-file-storage/pkg/internal/apperr"
	"github.com/lostyway/cloud-file-storage/pkg/internal/types"
)

// tenantFrom 从请求上下文提取租户标识，由认证中间件写入.
func tenantFrom(c *gin.Context) (int64, error) {
	tenant, ok := ctxPkg.GetTenant(c.Request.Context())
	if !ok || tenant <= 0 {
		return 0, apperr.Unauthenticated("missing tenant identity")
	}

	return tenant, nil
}

// writeError 领域错误统一映射为 HTTP 状态码与错误响应体.
func writeError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.HTTPStatus(err), types.ErrorResponse{Message: err.Error()})
}
