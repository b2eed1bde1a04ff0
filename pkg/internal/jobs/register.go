package jobs

import (
	"context"
	"fmt"

	"github.com/lostyway/cloud-file-storage/pkg/configs"
	ctxPkg "github.com/lostyway/cloud-file-storage/pkg/context"
	"github.com/lostyway/cloud-file-storage/pkg/internal/storage"
	"github.com/lostyway/cloud-file-storage/pkg/scheduler"
)

// RegisterJobs 配置后台任务：
//   - 固定间隔（默认 2s）执行出箱分发
//   - 按 outbox.retention_cron 清理已处理的出箱行
//   - 按 files.retention_cron 清理已完结文档（对象 + 元数据）
func RegisterJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	cfg := configs.GetConfig()
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)
	db := mgr.GetDBClient().GetDB()

	dispatcher := NewDispatcher(db, mgr.GetMQClient(), cfg.Outbox.BatchSize)
	if err := sched.AddInterval(JobOutboxDispatch, cfg.Outbox.Interval, dispatcher.Run, baseCtx); err != nil {
		return err
	}

	outboxCleaner := NewOutboxCleaner(db, cfg.Outbox.Retention)
	if err := sched.AddCron(JobOutboxClean, cfg.Outbox.RetentionCron, outboxCleaner.Run, baseCtx); err != nil {
		return err
	}

	retentionCleaner := NewRetentionCleaner(db, mgr.GetS3Client(), cfg.Files.Retention)
	if err := sched.AddCron(JobFilesRetention, cfg.Files.RetentionCron, retentionCleaner.Run, baseCtx); err != nil {
		return err
	}

	return nil
}
