package handle

import (
	"io"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/lostyway/cloud-file-storage/pkg/context"
	"github.com/lostyway/cloud-file-storage/pkg/internal/service"
	"github.com/lostyway/cloud-file-storage/pkg/log"
)

// DownloadResource 下载文件或将文件夹打包为 ZIP 流式返回.
//
// 所有会失败的检查（路径校验、存在性）在响应头发出前完成；
// 之后的流式写入错误只能中断连接，无法再改写状态码.
//
//	@Summary		下载资源
//	@Description	文件直接返回字节流；文件夹打包为zip流式返回
//	@Tags			资源
//	@Produce		application/octet-stream
//	@Param			path	query		string	false	"租户相对路径，缺省为根"
//	@Success		200		{file}		file
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Router			/resource/download [get]
func DownloadResource(c *gin.Context) {
	l := log.Logger()

	tenant, err := tenantFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	svc := service.NewResourceService(c.Request.Context())

	target, err := svc.PrepareDownload(c.Request.Context(), tenant, c.Query("path"))
	if err != nil {
		writeError(c, err)
		return
	}

	if target.IsDir {
		c.Header("Content-Type", "application/zip")
		c.Header("Content-Disposition", contentDisposition(target.Name+".zip"))

		streamer := service.NewArchiveStreamer(ctxPkg.GetS3Client(c.Request.Context()))
		if err := streamer.Stream(c.Request.Context(), target.Key, c.Writer); err != nil {
			l.Error().Err(err).Str("key", target.Key).Msg("zip stream failed")
		}

		return
	}

	obj, err := svc.OpenFile(c.Request.Context(), target.Key)
	if err != nil {
		writeError(c, err)
		return
	}

	defer func() { _ = obj.Close() }()

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", contentDisposition(target.Name))

	if _, err := io.Copy(c.Writer, obj); err != nil {
		l.Error().Err(err).Str("key", target.Key).Msg("file stream failed")
	}
}

// contentDisposition 构造 RFC 5987 形式的附件响应头.
func contentDisposition(name string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return "attachment; filename*=UTF-8''" + encoded
}

// DownloadReported 按入库文件 id 下载文档原件.
//
//	@Summary		下载入库文档
//	@Tags			文档入库
//	@Produce		application/octet-stream
//	@Param			fileId	path		string	true	"文件ID"
//	@Success		200		{file}		file
//	@Failure		400		{object}	types.ErrorResponse	"无效的文件ID"
//	@Failure		404		{object}	types.ErrorResponse
//	@Router			/download/{fileId} [get]
func DownloadReported(c *gin.Context) {
	l := log.Logger()

	tenant, err := tenantFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	fileID, err := parseFileID(c.Param("fileId"))
	if err != nil {
		writeError(c, err)
		return
	}

	svc := service.NewIntakeService(c.Request.Context())

	record, obj, err := svc.OpenByID(c.Request.Context(), tenant, fileID)
	if err != nil {
		writeError(c, err)
		return
	}

	defer func() { _ = obj.Close() }()

	c.Header("Content-Type", record.ContentType.MIME())
	c.Header("Content-Disposition", contentDisposition(record.FileName))

	if _, err := io.Copy(c.Writer, obj); err != nil {
		l.Error().Err(err).Str("file_id", fileID.String()).Msg("intake download stream failed")
	}
}
