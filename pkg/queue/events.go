package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// NewFileUploadedMessage 构造 file-uploaded-topic 消息，按 file_id 分区.
// 出箱写入方先序列化后入库，分发器原样转发，保证崩溃重放时字节一致.
func NewFileUploadedMessage(payload FileUploadedPayload, opts ...func(*EventHeader)) (*message.Message, error) {
	return NewWatermillMessage(TopicFileUploaded, payload.FileID.String(), payload, opts...)
}

// ParseFileUploaded 将 Watermill 消息解析为强类型 Envelope（FileUploadedPayload）.
func ParseFileUploaded(msg *message.Message) (Message[FileUploadedPayload], error) {
	return ParseWatermillMessage[FileUploadedPayload](msg)
}

// ParseFileStatusUpdated 将 Watermill 消息解析为强类型 Envelope（FileStatusUpdatedPayload）.
func ParseFileStatusUpdated(msg *message.Message) (Message[FileStatusUpdatedPayload], error) {
	return ParseWatermillMessage[FileStatusUpdatedPayload](msg)
}

// NewFileStatusUpdatedMessage 构造状态回写消息，测试与下游模拟使用.
func NewFileStatusUpdatedMessage(payload FileStatusUpdatedPayload, opts ...func(*EventHeader)) (*message.Message, error) {
	return NewWatermillMessage(TopicFileStatusUpdated, payload.FileID.String(), payload, opts...)
}
