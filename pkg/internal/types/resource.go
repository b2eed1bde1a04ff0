// Package types 定义 HTTP 层的请求与响应结构体.
package types

// ResourceType 资源类型判别符.
type ResourceType string

const (
	ResourceFile      ResourceType = "FILE"
	ResourceDirectory ResourceType = "DIRECTORY"
)

// Resource 客户端可见的资源视图：父级前缀 + 基名 + 类型，文件附带大小.
type Resource struct {
	Path string       `json:"path"` // 父级前缀，含结尾 '/'
	Name string       `json:"name"` // 基名
	Type ResourceType `json:"type"`
	Size *int64       `json:"size,omitempty"` // 仅 FILE
}

// NewFileResource 构造文件资源.
func NewFileResource(parent, name string, size int64) Resource {
	return Resource{Path: parent, Name: name, Type: ResourceFile, Size: &size}
}

// NewDirectoryResource 构造文件夹资源.
func NewDirectoryResource(parent, name string) Resource {
	return Resource{Path: parent, Name: name, Type: ResourceDirectory}
}
