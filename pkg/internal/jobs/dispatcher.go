// Package jobs 负责注册与实现后台任务：出箱分发、出箱清理与文档保留清理.
package jobs

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"gorm.io/gorm"

	"github.com/lostyway/cloud-file-storage/pkg/internal/model"
	"github.com/lostyway/cloud-file-storage/pkg/internal/repo"
	"github.com/lostyway/cloud-file-storage/pkg/internal/storage/mq"
	nlog "github.com/lostyway/cloud-file-storage/pkg/log"
	"github.com/lostyway/cloud-file-storage/pkg/metrics"
	"github.com/lostyway/cloud-file-storage/pkg/queue"
)

// Dispatcher 出箱分发器：每个 tick 在一个事务里锁定一批未处理行，
// 发布到总线后在同一事务里翻 processed 标记.
// 至少一次语义：发布后提交前崩溃会导致重投递，消费端必须幂等.
type Dispatcher struct {
	db        *gorm.DB
	outbox    *repo.Outbox
	bus       *mq.Client
	batchSize int
}

// NewDispatcher 构造分发器.
func NewDispatcher(db *gorm.DB, bus *mq.Client, batchSize int) *Dispatcher {
	return &Dispatcher{
		db:        db,
		outbox:    repo.NewOutbox(db),
		bus:       bus,
		batchSize: batchSize,
	}
}

// Tick 执行一轮分发，返回成功投递的行数.
func (d *Dispatcher) Tick(ctx context.Context) (int, error) {
	dispatched := 0

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events, err := d.outbox.FetchUnprocessed(ctx, tx, d.batchSize)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(events))

		for i := range events {
			if err := d.publish(ctx, &events[i]); err != nil {
				return err
			}

			ids = append(ids, events[i].ID)
		}

		if err := d.outbox.MarkProcessed(ctx, tx, ids); err != nil {
			return err
		}

		dispatched = len(ids)

		return nil
	})
	if err != nil {
		metrics.OutboxDispatched.WithLabelValues("error").Inc()
		return 0, err
	}

	if dispatched > 0 {
		metrics.OutboxDispatched.WithLabelValues("ok").Add(float64(dispatched))
	}

	return dispatched, nil
}

// publish 把出箱行原样发布到 file-uploaded-topic，按 file_id 分区.
// 负载在入库时已序列化，这里不再重编码，崩溃重放字节一致.
func (d *Dispatcher) publish(ctx context.Context, ev *model.OutboxEvent) error {
	msg := message.NewMessage(queue.NewMessageID(), ev.Payload)
	msg.Metadata.Set(mq.PartitionKeyMetadata, ev.FileID.String())
	msg.Metadata.Set("topic", queue.TopicFileUploaded)

	return d.bus.Publish(ctx, queue.TopicFileUploaded, msg)
}

// Run 供调度器调用的封装，失败只记录日志，下个 tick 重试.
func (d *Dispatcher) Run(ctx context.Context) {
	n, err := d.Tick(ctx)
	if err != nil {
		nlog.Logger().Error().Err(err).Msg("outbox dispatch failed")
		return
	}

	if n > 0 {
		nlog.Logger().Debug().Int("count", n).Msg("outbox events dispatched")
	}
}
