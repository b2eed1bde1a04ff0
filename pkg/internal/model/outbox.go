package model

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEvent 事务性 outbox 行：与源记录同事务写入，由分发器异步投递.
// Processed 只会从 false 翻到 true，清理任务只删除已处理的行.
type OutboxEvent struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FileID    uuid.UUID `gorm:"type:uuid;index"          json:"file_id"`
	Payload   []byte    `gorm:"type:bytes"               json:"payload"`
	Processed bool      `gorm:"index;default:false"      json:"processed"`
	CreatedAt time.Time `gorm:"index"                    json:"created_at"`
}

// TableName 与历史部署保持一致.
func (OutboxEvent) TableName() string {
	return "outbox_kafka"
}
