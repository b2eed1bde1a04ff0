package service

import (
	"archive/zip"
	"context"
	"io"
	"strings"

	"github.com/lostyway/cloud-file-storage/pkg/internal/storage/objstore"
	nlog "github.com/lostyway/cloud-file-storage/pkg/log"
)

// ArchiveStreamer 把文件夹前缀打包为 ZIP 流，不在内存或磁盘落地整个归档.
type ArchiveStreamer struct {
	store objstore.Store
}

// NewArchiveStreamer 构造打包器.
func NewArchiveStreamer(store objstore.Store) *ArchiveStreamer {
	return &ArchiveStreamer{store: store}
}

// Stream 列举前缀下的文件并逐项写入 ZIP.
// 单个条目读取失败仅记录日志并跳过；写端失败终止整个流，
// 此时响应头已发出，无法恢复.
func (a *ArchiveStreamer) Stream(ctx context.Context, folderKey string, w io.Writer) error {
	zw := zip.NewWriter(w)

	for item := range a.store.List(ctx, folderKey, objstore.ListOptions{Recursive: true}) {
		if item.Err != nil {
			return item.Err
		}

		if strings.HasSuffix(item.Key, "/") {
			// marker 与目录占位不进归档
			continue
		}

		if err := a.writeEntry(ctx, zw, folderKey, item.Key); err != nil {
			return err
		}
	}

	return zw.Close()
}

const archiveCopyBufSize = 32 << 10

// writeEntry 写入单个归档条目，条目名为去掉源前缀的相对键.
// 读端失败仅跳过该条目，写端失败才向上终止流.
func (a *ArchiveStreamer) writeEntry(ctx context.Context, zw *zip.Writer, folderKey, key string) error {
	name := strings.TrimPrefix(strings.TrimPrefix(key, folderKey), "/")
	if name == "" {
		return nil
	}

	rc, err := a.store.Open(ctx, key)
	if err != nil {
		nlog.Logger().Warn().Err(err).Str("key", key).Msg("skip unreadable archive entry")
		return nil
	}
	defer rc.Close()

	// minio 的 GetObject 延迟建连，读取错误到首次 Read 才暴露，
	// 先读一块再建条目，坏对象不会留下空条目
	buf := make([]byte, archiveCopyBufSize)

	n, rerr := rc.Read(buf)
	if rerr != nil && rerr != io.EOF {
		nlog.Logger().Warn().Err(rerr).Str("key", key).Msg("skip unreadable archive entry")
		return nil
	}

	entry, err := zw.Create(name)
	if err != nil {
		return err
	}

	for {
		if n > 0 {
			if _, werr := entry.Write(buf[:n]); werr != nil {
				return werr
			}
		}

		if rerr == io.EOF {
			return nil
		}

		if rerr != nil {
			nlog.Logger().Warn().Err(rerr).Str("key", key).Msg("archive entry truncated by read failure")
			return nil
		}

		n, rerr = rc.Read(buf)
	}
}
