package types

import (
	"time"

	"github.com/google/uuid"
)

// IntakeResponse 文档入库结果.
type IntakeResponse struct {
	FileID  uuid.UUID `json:"file_id"`
	Message string    `json:"message"`
	Owner   int64     `json:"owner"`
}

// FileStatusResponse 文档处理状态查询结果.
type FileStatusResponse struct {
	FileID    uuid.UUID `json:"fileId"`
	Status    string    `json:"status"`
	FileName  string    `json:"fileName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Notes     *string   `json:"notes,omitempty"`
}

// ErrorResponse 统一错误响应体.
type ErrorResponse struct {
	Message string `json:"message"`
}
