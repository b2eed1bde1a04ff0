package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lostyway/cloud-file-storage/pkg/internal/service"
)

// ListDirectory 列出文件夹的直接子项.
//
//	@Summary		列出目录
//	@Description	返回目录的直接子资源，不含自身的占位标记；path 缺省为租户根
//	@Tags			目录
//	@Produce		json
//	@Param			path	query		string	false	"文件夹路径"
//	@Success		200		{array}		types.Resource
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Router			/directory [get]
func ListDirectory(c *gin.Context) {
	tenant, err := tenantFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	svc := service.NewResourceService(c.Request.Context())

	res, err := svc.ListDirectory(c.Request.Context(), tenant, c.Query("path"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// CreateDirectory 创建空文件夹.
//
//	@Summary		创建目录
//	@Description	父级目录必须已存在；重复创建同名目录返回409
//	@Tags			目录
//	@Produce		json
//	@Param			path	query		string	true	"文件夹路径"
//	@Success		201		{object}	types.Resource
//	@Failure		400		{object}	types.ErrorResponse	"路径非法"
//	@Failure		404		{object}	types.ErrorResponse	"父级不存在"
//	@Failure		409		{object}	types.ErrorResponse	"目录已存在"
//	@Router			/directory [post]
func CreateDirectory(c *gin.Context) {
	tenant, err := tenantFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	svc := service.NewResourceService(c.Request.Context())

	res, err := svc.CreateFolder(c.Request.Context(), tenant, c.Query("path"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}
