package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lostyway/cloud-file-storage/pkg/internal/apperr"
	"github.com/lostyway/cloud-file-storage/pkg/internal/service"
	"github.com/lostyway/cloud-file-storage/pkg/log"
)

// ReportFile 文档入库：对象写入、元数据行与发件箱事件在一个事务内落地.
//
//	@Summary		上报文档
//	@Description	接收 multipart 文档（pdf/docx/xlsx，不超过大小上限），入库并异步通知处理方
//	@Tags			文档入库
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"文档内容"
//	@Success		201		{object}	types.IntakeResponse
//	@Failure		400		{object}	types.ErrorResponse	"超限或格式不支持"
//	@Failure		409		{object}	types.ErrorResponse	"文件已入库"
//	@Router			/report [post]
func ReportFile(c *gin.Context) {
	l := log.Logger()

	tenant, err := tenantFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	fh, err := formFile(c, "file")
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

	svc := service.NewIntakeService(c.Request.Context())

	resp, err := svc.Intake(c.Request.Context(), tenant, fh.Filename, f, fh.Size)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetFileStatus 查询入库文档的处理状态.
//
//	@Summary		查询文档状态
//	@Tags			文档入库
//	@Produce		json
//	@Param			fileId	query		string	true	"文件ID"
//	@Success		200		{object}	types.FileStatusResponse
//	@Failure		400		{object}	types.ErrorResponse	"无效的文件ID"
//	@Failure		404		{object}	types.ErrorResponse
//	@Router			/status [get]
func GetFileStatus(c *gin.Context) {
	tenant, err := tenantFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	fileID, err := parseFileID(c.Query("fileId"))
	if err != nil {
		writeError(c, err)
		return
	}

	svc := service.NewIntakeService(c.Request.Context())

	resp, err := svc.GetStatus(c.Request.Context(), tenant, fileID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// parseFileID 解析文件 id，空值或非 UUID 视为参数错误.
func parseFileID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, apperr.InvalidArgument("fileId is required")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.InvalidArgument("invalid fileId %q", raw)
	}

	return id, nil
}
