// Package model 定义元数据库实体.
package model

import (
	"time"

	"github.com/google/uuid"
)

// FileStatus 文档处理状态.
type FileStatus string

const (
	StatusUploaded   FileStatus = "UPLOADED"
	StatusProcessing FileStatus = "PROCESSING"
	StatusCompleted  FileStatus = "COMPLETED"
	StatusFailed     FileStatus = "FAILED"
)

// Terminal 是否终态. 终态之后不允许回退.
func (s FileStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Valid 是否已知状态.
func (s FileStatus) Valid() bool {
	switch s {
	case StatusUploaded, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}

	return false
}

// ContentType 文档内容类型.
type ContentType string

const (
	ContentPDF  ContentType = "PDF"
	ContentDOCX ContentType = "DOCX"
	ContentXLSX ContentType = "XLSX"
)

// MIME 返回文档类型对应的 MIME 串，对象写入时使用.
func (c ContentType) MIME() string {
	switch c {
	case ContentPDF:
		return "application/pdf"
	case ContentDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ContentXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// UploadedFile 入库文档的元数据记录.
type UploadedFile struct {
	FileID   uuid.UUID `gorm:"type:uuid;primaryKey"                            json:"file_id"`
	FileName string    `gorm:"size:512"                                        json:"file_name"`
	// FullPath 对象键，必须以上传者的根前缀开头；和 uploader_id 一起唯一
	FullPath    string      `gorm:"size:1024;index:idx_path_uploader,unique"   json:"full_path"`
	ContentType ContentType `gorm:"size:16"                                    json:"content_type"`
	FileSize    int64       `gorm:""                                           json:"file_size"`
	UploaderID  int64       `gorm:"index:idx_path_uploader,unique;index"       json:"uploader_id"`
	Status      FileStatus  `gorm:"size:16;index"                              json:"status"`
	Notes       *string     `gorm:"type:text"                                  json:"notes,omitempty"`
	CreatedAt   time.Time   `gorm:"index"                                      json:"created_at"`
	UpdatedAt   time.Time   `gorm:""                                           json:"updated_at"`
}

// TableName 与历史部署保持一致.
func (UploadedFile) TableName() string {
	return "uploaded_files"
}
