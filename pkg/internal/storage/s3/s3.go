// Package s3 处理S3存储操作，基于 MinIO 客户端实现 objstore.Store 契约.
package s3

import (
	"context"
	"io"
	"net/url"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lostyway/cloud-file-storage/pkg/configs"
	"github.com/lostyway/cloud-file-storage/pkg/internal/apperr"
	"github.com/lostyway/cloud-file-storage/pkg/internal/storage/objstore"
	nlog "github.com/lostyway/cloud-file-storage/pkg/log"
)

// Client 包装 MinIO 客户端，绑定单一 bucket.
type Client struct {
	mc     *minio.Client
	bucket string
}

// New 初始化 MinIO 客户端，若 bucket 不存在则尝试创建.
func New(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().Storage
	endpoint := cfg.Endpoint
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			cfg.UseSSL = true
		}
	}

	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, apperr.StorageIO(err, "create minio client")
	}

	mc.SetAppInfo("cloud-file-storage", configs.AppVersion)

	cli := &Client{mc: mc, bucket: cfg.Bucket}

	if err := cli.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.Bucket).Msg("s3 connected")

	return cli, nil
}

// EnsureBucket 幂等地确保 bucket 存在，启动时调用.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return apperr.StorageIO(err, "check bucket %s", c.bucket)
	}

	if !exists {
		if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return apperr.StorageIO(err, "create bucket %s", c.bucket)
		}

		nlog.Logger().Info().Str("bucket", c.bucket).Msg("bucket created")
	}

	return nil
}

// Put 写入对象. size 为 0 的写入用于物化文件夹 marker.
func (c *Client) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := c.mc.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return apperr.StorageIO(err, "put object %s", key)
	}

	return nil
}

// Stat 查询单对象元信息，缺失返回 KindNotFound.
func (c *Client) Stat(ctx context.Context, key string) (objstore.ObjectInfo, error) {
	info, err := c.mc.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return objstore.ObjectInfo{}, apperr.NotFound("object %s not found", key)
		}

		return objstore.ObjectInfo{}, apperr.StorageIO(err, "stat object %s", key)
	}

	return objstore.ObjectInfo{Size: info.Size, ContentType: info.ContentType}, nil
}

// Open 打开对象的流式读取.
func (c *Client) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := c.mc.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperr.StorageIO(err, "get object %s", key)
	}

	return obj, nil
}

// List 按前缀列举对象. Recursive 为 false 时按 '/' 分隔符只列一层.
func (c *Client) List(ctx context.Context, prefix string, opts objstore.ListOptions) <-chan objstore.Item {
	out := make(chan objstore.Item)

	go func() {
		defer close(out)

		objCh := c.mc.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: opts.Recursive,
			MaxKeys:   opts.Max,
		})

		n := 0

		for obj := range objCh {
			if opts.Max > 0 && n >= opts.Max {
				return
			}

			item := objstore.Item{}
			if obj.Err != nil {
				item.Err = apperr.StorageIO(obj.Err, "list prefix %s", prefix)
			} else {
				item.Key = obj.Key
				item.Size = obj.Size
				item.IsDir = obj.Size == 0 && len(obj.Key) > 0 && obj.Key[len(obj.Key)-1] == '/'
			}

			select {
			case out <- item:
				n++
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// Copy 服务器端复制，元数据保留.
func (c *Client) Copy(ctx context.Context, src, dst string) error {
	_, err := c.mc.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: c.bucket, Object: dst},
		minio.CopySrcOptions{Bucket: c.bucket, Object: src},
	)
	if err != nil {
		return apperr.StorageIO(err, "copy %s to %s", src, dst)
	}

	return nil
}

// Remove 删除单对象.
func (c *Client) Remove(ctx context.Context, key string) error {
	if err := c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return apperr.StorageIO(err, "remove object %s", key)
	}

	return nil
}

// HealthCheck 通过列出桶来验证连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.mc.ListBuckets(ctx)
	return err
}

// isNoSuchKey 识别 minio 的对象缺失错误.
func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}

// 编译期确认 Client 满足 objstore.Store.
var _ objstore.Store = (*Client)(nil)
