// Package objstore 定义对象存储适配层的最小能力集合.
// 网关的资源操作只依赖这里的接口；生产实现基于 MinIO（storage/s3），
// 测试可注入内存实现.
package objstore

import (
	"context"
	"io"
)

// Item 列举结果中的一项.
type Item struct {
	Key   string
	Size  int64
	IsDir bool
	// Err 非 nil 表示该项读取失败，Key/Size 无效
	Err error
}

// ObjectInfo 单对象元信息.
type ObjectInfo struct {
	Size        int64
	ContentType string
}

// ListOptions 列举选项.
type ListOptions struct {
	// Recursive 为 false 时按 '/' 分隔符只列一层
	Recursive bool
	// Max 限制返回条数，0 表示不限制
	Max int
}

// Store S3 风格后端的能力契约.
// 所有传输/IO 故障以 apperr.KindStorageIO 返回，单对象缺失以 apperr.KindNotFound 区分.
type Store interface {
	// Put 写入对象；size 为 0 且 r 为空时物化一个文件夹 marker.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Stat 查询单对象.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Open 打开流式读取.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// List 按前缀列举；通道在遍历完成或 ctx 取消后关闭.
	List(ctx context.Context, prefix string, opts ListOptions) <-chan Item
	// Copy 服务器端复制，保留元数据.
	Copy(ctx context.Context, src, dst string) error
	// Remove 尽力而为的单对象删除.
	Remove(ctx context.Context, key string) error
}
