// Package context 拓展上下文功能，将存储管理器与租户身份集成到上下文中，
// 方便在应用程序各处传递和使用.
package context

import (
	"context"

	"github.com/lostyway/cloud-file-storage/pkg/internal/storage"
	dbc "github.com/lostyway/cloud-file-storage/pkg/internal/storage/db"
	kvc "github.com/lostyway/cloud-file-storage/pkg/internal/storage/kv"
	mqc "github.com/lostyway/cloud-file-storage/pkg/internal/storage/mq"
	s3c "github.com/lostyway/cloud-file-storage/pkg/internal/storage/s3"
)

type ContextKey string

const (
	StorageManagerKey ContextKey = "storageManager"
	TenantKey         ContextKey = "tenantID"
)

// WithStorageManager 将 Manager 存储到 context 中.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, StorageManagerKey, mgr)
}

// GetManager 从 context 中获取 Manager.
func GetManager(ctx context.Context) *storage.Manager {
	if mgr, ok := ctx.Value(StorageManagerKey).(*storage.Manager); ok {
		return mgr
	}

	return nil
}

// GetS3Client 从 context 中获取 S3 客户端.
func GetS3Client(ctx context.Context) *s3c.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetS3Client()
	}

	return nil
}

// GetDBClient 从 context 中获取 DB 客户端.
func GetDBClient(ctx context.Context) *dbc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetDBClient()
	}

	return nil
}

// GetMQClient 从 context 中获取 MQ 客户端.
func GetMQClient(ctx context.Context) *mqc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetMQClient()
	}

	return nil
}

// GetKVClient 从 context 中获取 KV 客户端.
func GetKVClient(ctx context.Context) *kvc.Client {
	if mgr := GetManager(ctx); mgr != nil {
		return mgr.GetKVClient()
	}

	return nil
}

// WithTenant 将租户标识存储到 context 中.
func WithTenant(ctx context.Context, tenantID int64) context.Context {
	return context.WithValue(ctx, TenantKey, tenantID)
}

// GetTenant 从 context 中获取租户标识. 第二个返回值表示是否已认证.
func GetTenant(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(TenantKey).(int64)
	return id, ok
}
