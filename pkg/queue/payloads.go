package queue

import (
	"time"

	"github.com/google/uuid"
)

// FileUploadedPayload 文档入库事件，为下游处理方提供完整的文件上下文.
type FileUploadedPayload struct {
	FileID      uuid.UUID `json:"file_id"`
	FileName    string    `json:"file_name"`
	FullPath    string    `json:"full_path"`
	ContentType string    `json:"content_type"`
	FileSize    int64     `json:"file_size"`
	UploaderID  int64     `json:"uploader_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// FileStatusUpdatedPayload 下游处理方回写的状态变更.
// Notes 为空串时保留已有备注.
type FileStatusUpdatedPayload struct {
	FileID    uuid.UUID `json:"file_id"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
