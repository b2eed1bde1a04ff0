// Package service 实现网关的业务操作：文件夹/文件资源操作、打包下载与文档入库流水线.
package service

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"

	ctxPkg "github.com/lostyway/cloud-file-storage/pkg/context"
	"github.com/lostyway/cloud-file-storage/pkg/internal/apperr"
	"github.com/lostyway/cloud-file-storage/pkg/internal/pathutil"
	"github.com/lostyway/cloud-file-storage/pkg/internal/storage/objstore"
	"github.com/lostyway/cloud-file-storage/pkg/internal/types"
)

const markerContentType = "application/octet-stream"

// ResourceService 承载面向用户的资源操作，底下只依赖对象存储契约.
type ResourceService struct {
	store objstore.Store
}

// NewResourceService 从请求上下文取出存储管理器构造服务.
func NewResourceService(c context.Context) *ResourceService {
	return &ResourceService{store: ctxPkg.GetS3Client(c)}
}

// NewResourceServiceWith 用显式存储构造服务，测试用.
func NewResourceServiceWith(store objstore.Store) *ResourceService {
	return &ResourceService{store: store}
}

// EnsureRootFolder 幂等地物化租户根 marker，所有操作入口先调用.
func (s *ResourceService) EnsureRootFolder(ctx context.Context, tenantID int64) error {
	root := pathutil.RootPrefix(tenantID)
	return s.store.Put(ctx, root, bytes.NewReader(nil), 0, markerContentType)
}

// prefixExists 判断前缀下是否存在任意键.
func (s *ResourceService) prefixExists(ctx context.Context, prefix string) (bool, error) {
	listCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for item := range s.store.List(listCtx, prefix, objstore.ListOptions{Recursive: true, Max: 1}) {
		if item.Err != nil {
			return false, item.Err
		}

		return true, nil
	}

	return false, nil
}

// dirResource 把文件夹键映射为资源视图.
func dirResource(key string) types.Resource {
	parent, _ := pathutil.Parent(key)
	return types.NewDirectoryResource(parent, pathutil.Basename(key))
}

// fileResource 把文件键映射为资源视图.
func fileResource(key string, size int64) types.Resource {
	parent, _ := pathutil.Parent(key)
	return types.NewFileResource(parent, pathutil.Basename(key), size)
}

// GetInfo 查询单个资源的信息.
// 文件路径的父级前缀缺失时优先报 ParentNotFound.
func (s *ResourceService) GetInfo(ctx context.Context, tenantID int64, userPath string) (*types.Resource, error) {
	if err := s.EnsureRootFolder(ctx, tenantID); err != nil {
		return nil, err
	}

	key := pathutil.Resolve(tenantID, userPath)
	if err := pathutil.ValidateKey(key); err != nil {
		return nil, err
	}

	if pathutil.IsFolderPath(key) {
		exists, err := s.prefixExists(ctx, key)
		if err != nil {
			return nil, err
		}

		if !exists {
			return nil, apperr.NotFound("resource %s not found", userPath)
		}

		r := dirResource(key)

		return &r, nil
	}

	if parent, ok := pathutil.Parent(key); ok && parent != pathutil.RootPrefix(tenantID) {
		exists, err := s.prefixExists(ctx, parent)
		if err != nil {
			return nil, err
		}

		if !exists {
			return nil, apperr.ParentNotFound("parent folder of %s not found", userPath)
		}
	}

	info, err := s.store.Stat(ctx, key)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("resource %s not found", userPath)
		}

		return nil, err
	}

	r := fileResource(key, info.Size)

	return &r, nil
}

// CreateFolder 创建空文件夹. 父级必须已存在（或就是租户根），不自动补全中间层级.
func (s *ResourceService) CreateFolder(ctx context.Context, tenantID int64, userPath string) (*types.Resource, error) {
	if err := s.EnsureRootFolder(ctx, tenantID); err != nil {
		return nil, err
	}

	key := pathutil.Resolve(tenantID, userPath)
	if !strings.HasSuffix(key, "/") {
		return nil, apperr.InvalidPath("invalid folder path: %s", userPath)
	}

	if err := pathutil.ValidateFolderKey(key); err != nil {
		return nil, err
	}

	root := pathutil.RootPrefix(tenantID)
	if key == root {
		return nil, apperr.InvalidPath("invalid folder path: %s", userPath)
	}

	if parent, ok := pathutil.Parent(key); ok && parent != root {
		exists, err := s.prefixExists(ctx, parent)
		if err != nil {
			return nil, err
		}

		if !exists {
			return nil, apperr.ParentNotFound("parent folder of %s not found", userPath)
		}
	}

	exists, err := s.prefixExists(ctx, key)
	if err != nil {
		return nil, err
	}

	if exists {
		return nil, apperr.AlreadyExists("resource %s already exists", userPath)
	}

	if err := s.store.Put(ctx, key, bytes.NewReader(nil), 0, markerContentType); err != nil {
		return nil, err
	}

	r := dirResource(key)

	return &r, nil
}

// Delete 删除资源. 文件夹为递归删除，部分失败让整个操作以 StorageIO 失败，
// 删除幂等，调用方可以重试.
func (s *ResourceService) Delete(ctx context.Context, tenantID int64, userPath string) error {
	if err := s.EnsureRootFolder(ctx, tenantID); err != nil {
		return err
	}

	key := pathutil.Resolve(tenantID, userPath)
	if err := pathutil.ValidateKey(key); err != nil {
		return err
	}

	if pathutil.IsFolderPath(key) {
		keys, err := s.collectKeys(ctx, key)
		if err != nil {
			return err
		}

		if len(keys) == 0 {
			return apperr.NotFound("resource %s not found", userPath)
		}

		for _, k := range keys {
			if err := s.store.Remove(ctx, k); err != nil {
				return err
			}
		}

		return nil
	}

	if _, err := s.store.Stat(ctx, key); err != nil {
		return err
	}

	return s.store.Remove(ctx, key)
}

// collectKeys 递归收集前缀下的全部键.
func (s *ResourceService) collectKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	for item := range s.store.List(ctx, prefix, objstore.ListOptions{Recursive: true}) {
		if item.Err != nil {
			return nil, item.Err
		}

		keys = append(keys, item.Key)
	}

	return keys, nil
}

// ListDirectory 列举文件夹的直接子项，过滤文件夹自身的 marker.
func (s *ResourceService) ListDirectory(ctx context.Context, tenantID int64, userPath string) ([]types.Resource, error) {
	if err := s.EnsureRootFolder(ctx, tenantID); err != nil {
		return nil, err
	}

	key := pathutil.Resolve(tenantID, userPath)
	if !strings.HasSuffix(key, "/") {
		return nil, apperr.InvalidPath("invalid folder path: %s", userPath)
	}

	if err := pathutil.ValidateFolderKey(key); err != nil {
		return nil, err
	}

	exists, err := s.prefixExists(ctx, key)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, apperr.NotFound("resource %s not found", userPath)
	}

	resources := make([]types.Resource, 0)

	for item := range s.store.List(ctx, key, objstore.ListOptions{Recursive: false}) {
		if item.Err != nil {
			return nil, item.Err
		}

		if item.Key == key {
			// 文件夹自身的 marker 不进入列表
			continue
		}

		if item.IsDir || strings.HasSuffix(item.Key, "/") {
			resources = append(resources, dirResource(item.Key))
		} else {
			resources = append(resources, fileResource(item.Key, item.Size))
		}
	}

	return resources, nil
}

// Upload 把上传体写入目标文件夹，缺失的祖先 marker 自动补全.
func (s *ResourceService) Upload(ctx context.Context, tenantID int64, folderPath, fileName string, r io.Reader, size int64, contentType string) (*types.Resource, error) {
	if err := s.EnsureRootFolder(ctx, tenantID); err != nil {
		return nil, err
	}

	name := path.Base(fileName)
	if name == "" || name == "." || name == "/" {
		return nil, apperr.InvalidArgument("missing file name")
	}

	folderKey := pathutil.Resolve(tenantID, folderPath)
	if !strings.HasSuffix(folderKey, "/") {
		folderKey += "/"
	}

	key := folderKey + name
	if err := pathutil.ValidateFileKey(key); err != nil {
		return nil, err
	}

	if _, err := s.store.Stat(ctx, key); err == nil {
		return nil, apperr.AlreadyExists("resource %s already exists", name)
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	if err := s.ensureAncestors(ctx, tenantID, folderKey); err != nil {
		return nil, err
	}

	if contentType == "" {
		contentType = markerContentType
	}

	if err := s.store.Put(ctx, key, r, size, contentType); err != nil {
		return nil, err
	}

	res := fileResource(key, size)

	return &res, nil
}

// ensureAncestors 自根向下物化缺失的文件夹 marker.
func (s *ResourceService) ensureAncestors(ctx context.Context, tenantID int64, folderKey string) error {
	root := pathutil.RootPrefix(tenantID)
	if folderKey == root {
		return nil
	}

	rel := strings.TrimPrefix(folderKey, root)
	prefix := root

	for _, seg := range strings.Split(strings.TrimSuffix(rel, "/"), "/") {
		prefix += seg + "/"

		exists, err := s.prefixExists(ctx, prefix)
		if err != nil {
			return err
		}

		if !exists {
			if err := s.store.Put(ctx, prefix, bytes.NewReader(nil), 0, markerContentType); err != nil {
				return err
			}
		}
	}

	return nil
}

// DownloadTarget 下载目标：解析后的对象键与类型.
type DownloadTarget struct {
	Key   string
	Name  string
	IsDir bool
}

// PrepareDownload 解析并确认下载目标存在，响应头发出前完成所有失败检查.
func (s *ResourceService) PrepareDownload(ctx context.Context, tenantID int64, userPath string) (*DownloadTarget, error) {
	if err := s.EnsureRootFolder(ctx, tenantID); err != nil {
		return nil, err
	}

	key := pathutil.Resolve(tenantID, userPath)
	if err := pathutil.ValidateKey(key); err != nil {
		return nil, err
	}

	if pathutil.IsFolderPath(key) {
		exists, err := s.prefixExists(ctx, key)
		if err != nil {
			return nil, err
		}

		if !exists {
			return nil, apperr.NotFound("resource %s not found", userPath)
		}

		return &DownloadTarget{Key: key, Name: pathutil.Basename(key), IsDir: true}, nil
	}

	if _, err := s.store.Stat(ctx, key); err != nil {
		return nil, err
	}

	return &DownloadTarget{Key: key, Name: pathutil.Basename(key)}, nil
}

// OpenFile 打开文件键的流式读取.
func (s *ResourceService) OpenFile(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.store.Open(ctx, key)
}

// Move 移动或重命名资源. 跨多键的文件夹移动不是原子操作，
// 中途失败留下部分迁移的前缀并报 StorageIO，客户端重发即可续迁.
func (s *ResourceService) Move(ctx context.Context, tenantID int64, fromPath, toPath string) (*types.Resource, error) {
	if err := s.EnsureRootFolder(ctx, tenantID); err != nil {
		return nil, err
	}

	fromKey := pathutil.Resolve(tenantID, fromPath)
	toKey := pathutil.Resolve(tenantID, toPath)

	if fromKey == toKey {
		return nil, apperr.SameResource("source and target are the same resource")
	}

	if !pathutil.SameType(fromKey, toKey) {
		return nil, apperr.TypeMismatch("cannot move between file and folder")
	}

	if err := pathutil.ValidateKey(fromKey); err != nil {
		return nil, err
	}

	if err := pathutil.ValidateKey(toKey); err != nil {
		return nil, err
	}

	if pathutil.IsFolderPath(fromKey) {
		return s.moveFolder(ctx, tenantID, fromKey, toKey, fromPath, toPath)
	}

	return s.moveFile(ctx, fromKey, toKey, fromPath, toPath)
}

func (s *ResourceService) moveFile(ctx context.Context, fromKey, toKey, fromPath, toPath string) (*types.Resource, error) {
	info, err := s.store.Stat(ctx, fromKey)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("resource %s not found", fromPath)
		}

		return nil, err
	}

	if _, err := s.store.Stat(ctx, toKey); err == nil {
		return nil, apperr.AlreadyExists("resource %s already exists", toPath)
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}

	if err := s.store.Copy(ctx, fromKey, toKey); err != nil {
		return nil, err
	}

	if err := s.store.Remove(ctx, fromKey); err != nil {
		return nil, err
	}

	// 源父级可能因此清空，补回 marker 让文件夹保持可见
	if parent, ok := pathutil.Parent(fromKey); ok {
		if err := s.store.Put(ctx, parent, bytes.NewReader(nil), 0, markerContentType); err != nil {
			return nil, err
		}
	}

	res := fileResource(toKey, info.Size)

	return &res, nil
}

func (s *ResourceService) moveFolder(ctx context.Context, tenantID int64, fromKey, toKey, fromPath, toPath string) (*types.Resource, error) {
	if pathutil.IsWithin(fromKey, toKey) {
		return nil, apperr.InvalidArgument("cannot move a folder into itself")
	}

	exists, err := s.prefixExists(ctx, fromKey)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, apperr.NotFound("resource %s not found", fromPath)
	}

	targetExists, err := s.prefixExists(ctx, toKey)
	if err != nil {
		return nil, err
	}

	if targetExists {
		return nil, apperr.AlreadyExists("resource %s already exists", toPath)
	}

	keys, err := s.collectKeys(ctx, fromKey)
	if err != nil {
		return nil, err
	}

	for _, k := range keys {
		newKey := toKey + strings.TrimPrefix(k, fromKey)

		if err := s.store.Copy(ctx, k, newKey); err != nil {
			return nil, err
		}

		if err := s.store.Remove(ctx, k); err != nil {
			return nil, err
		}
	}

	res := dirResource(toKey)

	return &res, nil
}

// Search 在租户根下递归枚举，返回基名包含查询词的资源（区分大小写，无序）.
func (s *ResourceService) Search(ctx context.Context, tenantID int64, query string) ([]types.Resource, error) {
	if err := pathutil.ValidateQuery(query); err != nil {
		return nil, err
	}

	if err := s.EnsureRootFolder(ctx, tenantID); err != nil {
		return nil, err
	}

	root := pathutil.RootPrefix(tenantID)
	results := make([]types.Resource, 0)

	for item := range s.store.List(ctx, root, objstore.ListOptions{Recursive: true}) {
		if item.Err != nil {
			return nil, item.Err
		}

		if item.Key == root {
			continue
		}

		if !strings.Contains(pathutil.Basename(item.Key), query) {
			continue
		}

		if strings.HasSuffix(item.Key, "/") {
			results = append(results, dirResource(item.Key))
		} else {
			results = append(results, fileResource(item.Key, item.Size))
		}
	}

	return results, nil
}
