package handle

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lostyway/cloud-file-storage/pkg/internal/apperr"
	"github.com/lostyway/cloud-file-storage/pkg/internal/service"
	"github.com/lostyway/cloud-file-storage/pkg/log"
)

// GetResource 查询单个资源的信息.
//
//	@Summary		获取资源信息
//	@Description	按租户相对路径返回文件或文件夹的资源视图
//	@Tags			资源
//	@Produce		json
//	@Param			path	query		string	true	"租户相对路径"
//	@Success		200		{object}	types.Resource
//	@Failure		400		{object}	types.ErrorResponse	"路径非法"
//	@Failure		404		{object}	types.ErrorResponse	"资源不存在"
//	@Router			/resource [get]
func GetResource(c *gin.Context) {
	tenant, err := tenantFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	svc := service.NewResourceService(c.Request.Context())

	res, err := svc.GetInfo(c.Request.Context(), tenant, c.Query("path"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// DeleteResource 删除文件或递归删除文件夹.
//
//	@Summary		删除资源
//	@Tags			资源
//	@Param			path	query	string	true	"租户相对路径"
//	@Success		204
//	@Failure		404	{object}	types.ErrorResponse
//	@Router			/resource [delete]
func DeleteResource(c *gin.Context) {
	tenant, err := tenantFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	svc := service.NewResourceService(c.Request.Context())

	if err := svc.Delete(c.Request.Context(), tenant, c.Query("path")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UploadResource 上传文件到指定文件夹.
//
//	@Summary		上传文件
//	@Description	multipart 字段名 object 或 file；path 为目标文件夹，缺省为租户根
//	@Tags			资源
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			path	query		string	false	"目标文件夹路径"
//	@Param			file	formData	file	true	"文件内容"
//	@Success		201		{object}	types.Resource
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		409		{object}	types.ErrorResponse	"目标已存在"
//	@Router			/resource [post]
func UploadResource(c *gin.Context) {
	l := log.Logger()

	tenant, err := tenantFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	fh, err := formFile(c, "object", "file")
	if err != nil {
		writeError(c, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		l.Warn().Err(err).Msg("failed to open multipart file")
		writeError(c, err)

		return
	}

	defer func() { _ = f.Close() }()

	svc := service.NewResourceService(c.Request.Context())

	res, err := svc.Upload(c.Request.Context(), tenant, c.Query("path"),
		fh.Filename, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// MoveResource 移动或重命名资源.
//
//	@Summary		移动资源
//	@Tags			资源
//	@Produce		json
//	@Param			from	query		string	true	"源路径"
//	@Param			to		query		string	true	"目标路径"
//	@Success		200		{object}	types.Resource
//	@Failure		400		{object}	types.ErrorResponse	"类型不一致或自嵌套"
//	@Failure		404		{object}	types.ErrorResponse
//	@Failure		409		{object}	types.ErrorResponse
//	@Router			/resource/move [get]
func MoveResource(c *gin.Context) {
	tenant, err := tenantFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	svc := service.NewResourceService(c.Request.Context())

	res, err := svc.Move(c.Request.Context(), tenant, c.Query("from"), c.Query("to"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// SearchResources 按基名子串搜索租户的全部资源.
//
//	@Summary		搜索资源
//	@Tags			资源
//	@Produce		json
//	@Param			query	query		string	true	"搜索子串"
//	@Success		200		{array}		types.Resource
//	@Failure		400		{object}	types.ErrorResponse	"查询串非法"
//	@Router			/resource/search [get]
func SearchResources(c *gin.Context) {
	tenant, err := tenantFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	svc := service.NewResourceService(c.Request.Context())

	res, err := svc.Search(c.Request.Context(), tenant, c.Query("query"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// formFile 按候选字段名依次取 multipart 文件.
func formFile(c *gin.Context, names ...string) (*multipart.FileHeader, error) {
	for _, name := range names {
		fh, err := c.FormFile(name)
		if err == nil {
			return fh, nil
		}
	}

	return nil, apperr.InvalidArgument("multipart file field is required")
}
