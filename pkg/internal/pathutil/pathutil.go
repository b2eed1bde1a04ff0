// Package pathutil 实现租户路径引擎：纯字符串函数，负责路径分类、规范化、校验，
// 以及把文件夹/文件语义映射到对象存储的扁平键空间. 不做任何 I/O.
//
// 约定：
//   - 租户根前缀为 "user-{id}-files/"，所有下发到存储的键都以它开头
//   - 以 '/' 结尾、或最后一段不含 '.' 的路径视为文件夹
//   - 文件夹键恰好以一个 '/' 结尾；空文件夹由零字节 marker 对象占位
package pathutil

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/lostyway/cloud-file-storage/pkg/internal/apperr"
)

// RootPrefix 返回租户的根前缀.
func RootPrefix(tenantID int64) string {
	return "user-" + strconv.FormatInt(tenantID, 10) + "-files/"
}

// IsFolderPath 判断路径是否指向文件夹：以 '/' 结尾，或最后一段不含 '.'.
// 这一启发式与既有客户端兼容，不得改动.
func IsFolderPath(path string) bool {
	if strings.HasSuffix(path, "/") {
		return true
	}

	last := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		last = path[idx+1:]
	}

	return !strings.Contains(last, ".")
}

// SameType 两个路径是否同为文件夹或同为文件.
func SameType(a, b string) bool {
	return IsFolderPath(a) == IsFolderPath(b)
}

// StripLeadingSlashes 去掉全部前导 '/'；nil 语义的空串原样返回.
func StripLeadingSlashes(path string) string {
	return strings.TrimLeft(path, "/")
}

// IsRootPath 路径是否指向租户根（空、空白或仅 "/"）.
func IsRootPath(path string) bool {
	return strings.TrimSpace(path) == "" || strings.TrimSpace(path) == "/"
}

// Resolve 把租户相对路径解析为对象键：去前导斜杠、拼接根前缀，
// 文件夹路径保证以 '/' 结尾. 对已解析的键幂等.
func Resolve(tenantID int64, path string) string {
	root := RootPrefix(tenantID)

	rel := StripLeadingSlashes(path)
	if strings.HasPrefix(rel, root) {
		// 已带根前缀，保持幂等
		rel = rel[len(root):]
	}

	key := root + rel
	if IsFolderPath(key) && !strings.HasSuffix(key, "/") {
		key += "/"
	}

	return key
}

// isFolderSegmentRune 文件夹段允许的字符：Unicode 字母/数字/空格/下划线/连字符.
func isFolderSegmentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-'
}

// isAlnumRune 扩展名允许的字符：Unicode 字母/数字.
func isAlnumRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// validSegment 校验单个文件夹段.
func validSegment(seg string) bool {
	if seg == "" || seg == "." || seg == ".." {
		return false
	}

	for _, r := range seg {
		if !isFolderSegmentRune(r) {
			return false
		}
	}

	return true
}

// ValidateFolderKey 校验文件夹键语法：以 '/' 结尾，无 '//'，无 '.'/'..' 段，
// 每段只含字母/数字/空格/下划线/连字符.
func ValidateFolderKey(key string) error {
	if !strings.HasSuffix(key, "/") {
		return apperr.InvalidPath("invalid folder path: %s", key)
	}

	body := strings.TrimSuffix(key, "/")
	if body == "" {
		return apperr.InvalidPath("invalid folder path: %s", key)
	}

	for _, seg := range strings.Split(body, "/") {
		if !validSegment(seg) {
			return apperr.InvalidPath("invalid folder path: %s", key)
		}
	}

	return nil
}

// ValidateFileKey 校验文件键语法：目录段按文件夹语法，最后一段必须是
// name.ext，name 非空且不含 '.'，ext 非空且只含字母/数字.
func ValidateFileKey(key string) error {
	if key == "" || strings.HasSuffix(key, "/") {
		return apperr.InvalidPath("invalid file path: %s", key)
	}

	segs := strings.Split(key, "/")
	for _, seg := range segs[:len(segs)-1] {
		if !validSegment(seg) {
			return apperr.InvalidPath("invalid file path: %s", key)
		}
	}

	last := segs[len(segs)-1]

	dot := strings.IndexByte(last, '.')
	if dot <= 0 || dot == len(last)-1 {
		return apperr.InvalidPath("invalid file path: %s", key)
	}

	name, ext := last[:dot], last[dot+1:]
	if !validSegment(name) {
		return apperr.InvalidPath("invalid file path: %s", key)
	}

	for _, r := range ext {
		if !isAlnumRune(r) {
			return apperr.InvalidPath("invalid file path: %s", key)
		}
	}

	return nil
}

// ValidateKey 按分类分派到文件/文件夹校验.
func ValidateKey(key string) error {
	if IsFolderPath(key) {
		return ValidateFolderKey(key)
	}

	return ValidateFileKey(key)
}

// Parent 返回键的父级前缀（含结尾 '/'）.
// 位于根前缀之下没有父级时返回 ("", false).
func Parent(key string) (string, bool) {
	if key == "" {
		return "", false
	}

	end := len(key)
	if strings.HasSuffix(key, "/") {
		end--
	}

	idx := strings.LastIndexByte(key[:end], '/')
	if idx <= 0 {
		return "", false
	}

	return key[:idx+1], true
}

// Basename 返回键的最后一个非空段，去掉结尾 '/'.
func Basename(key string) string {
	trimmed := strings.TrimSuffix(key, "/")
	if idx := strings.LastIndexByte(trimmed, '/'); idx >= 0 {
		return trimmed[idx+1:]
	}

	return trimmed
}

// IsWithin 判断 inner 是否位于 outer 前缀之内（严格包含，'/' 边界）.
// 用于禁止把文件夹移动进自身.
func IsWithin(outer, inner string) bool {
	if !strings.HasSuffix(outer, "/") {
		outer += "/"
	}

	return inner != outer && strings.HasPrefix(inner, outer)
}

// ValidateQuery 校验搜索词：非空、不含 '/'，且必须是合法的 basename 片段
// （文件夹段字符或中间的 '.'）. '.'、'..' 整体拒绝.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" || query == "." || query == ".." {
		return apperr.InvalidArgument("invalid search query")
	}

	for _, r := range query {
		if !isFolderSegmentRune(r) && r != '.' {
			return apperr.InvalidArgument("invalid search query")
		}
	}

	return nil
}
