package jobs

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/lostyway/cloud-file-storage/pkg/internal/model"
	"github.com/lostyway/cloud-file-storage/pkg/internal/repo"
	"github.com/lostyway/cloud-file-storage/pkg/internal/storage/objstore"
	nlog "github.com/lostyway/cloud-file-storage/pkg/log"
)

// OutboxCleaner 删除已处理且超过保留期的出箱行.
type OutboxCleaner struct {
	outbox    *repo.Outbox
	retention time.Duration
}

// NewOutboxCleaner 构造出箱清理任务.
func NewOutboxCleaner(db *gorm.DB, retention time.Duration) *OutboxCleaner {
	return &OutboxCleaner{outbox: repo.NewOutbox(db), retention: retention}
}

// Run 执行一轮清理.
func (c *OutboxCleaner) Run(ctx context.Context) {
	l := nlog.Logger().With().Str("job", JobOutboxClean).Logger()

	n, err := c.outbox.DeleteProcessedBefore(ctx, time.Now().Add(-c.retention))
	if err != nil {
		l.Error().Err(err).Msg("outbox cleanup failed")
		return
	}

	if n > 0 {
		l.Info().Int64("deleted", n).Msg("processed outbox rows purged")
	}
}

// RetentionCleaner 清理已完结的文档：先删对象再删元数据行，
// 单行失败不允许中断整批.
type RetentionCleaner struct {
	files     *repo.Files
	store     objstore.Store
	retention time.Duration
}

// NewRetentionCleaner 构造文档保留清理任务.
func NewRetentionCleaner(db *gorm.DB, store objstore.Store, retention time.Duration) *RetentionCleaner {
	return &RetentionCleaner{files: repo.NewFiles(db), store: store, retention: retention}
}

const purgeConcurrency = 4

// Run 执行一轮清理，返回前记录成功与失败计数.
func (c *RetentionCleaner) Run(ctx context.Context) {
	l := nlog.Logger().With().Str("job", JobFilesRetention).Logger()

	records, err := c.files.FindByStatusInCreatedBefore(ctx,
		[]model.FileStatus{model.StatusCompleted, model.StatusFailed},
		time.Now().Add(-c.retention))
	if err != nil {
		l.Error().Err(err).Msg("retention query failed")
		return
	}

	var purged, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(purgeConcurrency)

	for i := range records {
		record := &records[i]

		g.Go(func() error {
			if err := c.purge(gctx, record); err != nil {
				l.Error().Err(err).Str("file_id", record.FileID.String()).Msg("retention purge failed")
				failed.Add(1)

				// 单行失败不终止整批
				return nil
			}

			purged.Add(1)

			return nil
		})
	}

	_ = g.Wait()

	if purged.Load() > 0 || failed.Load() > 0 {
		l.Info().Int64("purged", purged.Load()).Int64("failed", failed.Load()).Msg("retention cleanup finished")
	}
}

func (c *RetentionCleaner) purge(ctx context.Context, record *model.UploadedFile) error {
	if err := c.store.Remove(ctx, record.FullPath); err != nil {
		return err
	}

	return c.files.Delete(ctx, record.FileID)
}
