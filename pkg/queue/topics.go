// Package queue 定义消息主题常量，供发布/订阅使用.
package queue

const (
	// TopicFileUploaded 文档入库完成，由出箱分发器发布，按 file_id 分区.
	TopicFileUploaded = "file-uploaded-topic"
	// TopicFileStatusUpdated 下游处理状态变更，由状态消费者订阅.
	TopicFileStatusUpdated = "file-status-updated-topic"
)
