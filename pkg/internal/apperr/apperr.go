// Package apperr 定义网关的领域错误分类与 HTTP 映射.
// 核心层只返回带 Kind 的类型化错误，HTTP 边界统一转换为状态码与 {"message": ...} 响应体.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误类别.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidPath
	KindInvalidArgument
	KindTooLarge
	KindBadFormat
	KindTypeMismatch
	KindSameResource
	KindUnauthenticated
	KindNotFound
	KindParentNotFound
	KindAlreadyExists
	KindStorageIO
)

// String 返回类别名称，用于日志.
func (k Kind) String() string {
	switch k {
	case KindInvalidPath:
		return "invalid_path"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindTooLarge:
		return "too_large"
	case KindBadFormat:
		return "bad_format"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindSameResource:
		return "same_resource"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindParentNotFound:
		return "parent_not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindStorageIO:
		return "storage_io"
	default:
		return "unknown"
	}
}

// Error 带类别的领域错误.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建指定类别的错误.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误为指定类别.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// InvalidPath 路径不符合语法.
func InvalidPath(format string, args ...any) *Error {
	return New(KindInvalidPath, format, args...)
}

// InvalidArgument 参数非法（缺失文件名、自嵌套移动、空查询等）.
func InvalidArgument(format string, args ...any) *Error {
	return New(KindInvalidArgument, format, args...)
}

// TooLarge 上传超出体积上限.
func TooLarge(format string, args ...any) *Error {
	return New(KindTooLarge, format, args...)
}

// BadFormat 文档格式不被接受.
func BadFormat(format string, args ...any) *Error {
	return New(KindBadFormat, format, args...)
}

// TypeMismatch 移动时文件/文件夹类型不一致.
func TypeMismatch(format string, args ...any) *Error {
	return New(KindTypeMismatch, format, args...)
}

// SameResource 移动的源与目标完全相同.
func SameResource(format string, args ...any) *Error {
	return New(KindSameResource, format, args...)
}

// Unauthenticated 请求没有有效的租户身份.
func Unauthenticated(format string, args ...any) *Error {
	return New(KindUnauthenticated, format, args...)
}

// NotFound 资源不存在.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

// ParentNotFound 父级前缀不存在.
func ParentNotFound(format string, args ...any) *Error {
	return New(KindParentNotFound, format, args...)
}

// AlreadyExists 目标位置已被占用.
func AlreadyExists(format string, args ...any) *Error {
	return New(KindAlreadyExists, format, args...)
}

// StorageIO 底层存储/数据库/总线故障.
func StorageIO(err error, format string, args ...any) *Error {
	return Wrap(KindStorageIO, err, format, args...)
}

// KindOf 提取错误类别；非领域错误归为 KindStorageIO 之外的 KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// Is 判断错误是否为指定类别.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus 领域错误到 HTTP 状态码的统一映射.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidPath, KindInvalidArgument, KindTooLarge, KindBadFormat,
		KindTypeMismatch, KindSameResource:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound, KindParentNotFound:
		return http.StatusNotFound
	case KindAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
