// Package consumer 订阅消息总线上的状态回写事件并应用到元数据库.
package consumer

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"gorm.io/gorm"

	"github.com/lostyway/cloud-file-storage/pkg/internal/model"
	"github.com/lostyway/cloud-file-storage/pkg/internal/repo"
	"github.com/lostyway/cloud-file-storage/pkg/internal/storage/mq"
	nlog "github.com/lostyway/cloud-file-storage/pkg/log"
	"github.com/lostyway/cloud-file-storage/pkg/queue"
)

// StatusConsumer 应用下游处理方的状态变更. 重投递下幂等，终态不回退.
type StatusConsumer struct {
	files *repo.Files
	bus   *mq.Client
}

// NewStatusConsumer 构造消费者.
func NewStatusConsumer(db *gorm.DB, bus *mq.Client) *StatusConsumer {
	return &StatusConsumer{files: repo.NewFiles(db), bus: bus}
}

// Run 订阅 file-status-updated-topic 并阻塞消费到 ctx 结束.
func (c *StatusConsumer) Run(ctx context.Context) error {
	ch, err := c.bus.Subscribe(ctx, queue.TopicFileStatusUpdated)
	if err != nil {
		return err
	}

	nlog.Logger().Info().Str("topic", queue.TopicFileStatusUpdated).Msg("status consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			c.handle(ctx, msg)
		}
	}
}

// handle 处理单条消息：应用成功或消息不可解析时 Ack，
// 记录缺失或存储故障时 Nack 交给总线重试.
func (c *StatusConsumer) handle(ctx context.Context, msg *message.Message) {
	env, err := queue.ParseFileStatusUpdated(msg)
	if err != nil {
		nlog.Logger().Error().Err(err).Str("message_id", msg.UUID).Msg("malformed status event dropped")
		msg.Ack()

		return
	}

	if err := c.Apply(ctx, env.Payload); err != nil {
		nlog.Logger().Error().Err(err).
			Str("file_id", env.Payload.FileID.String()).
			Str("status", env.Payload.Status).
			Msg("status event not applied, requeueing")
		msg.Nack()

		return
	}

	msg.Ack()
}

// Apply 把一次状态变更写入元数据. 幂等：同一事件重复应用产生同一条记录.
func (c *StatusConsumer) Apply(ctx context.Context, p queue.FileStatusUpdatedPayload) error {
	incoming := model.FileStatus(p.Status)
	if !incoming.Valid() {
		nlog.Logger().Warn().Str("status", p.Status).Str("file_id", p.FileID.String()).Msg("unknown status ignored")
		return nil
	}

	record, err := c.files.FindByID(ctx, p.FileID)
	if err != nil {
		return err
	}

	// 终态之后到达的迟到事件不允许回退状态
	if record.Status.Terminal() && !incoming.Terminal() {
		nlog.Logger().Debug().
			Str("file_id", p.FileID.String()).
			Str("current", string(record.Status)).
			Str("incoming", string(incoming)).
			Msg("stale status event ignored")

		return nil
	}

	if record.Status == incoming && notesEqual(record.Notes, p.Notes) {
		// 重投递的同一事件，无需写库
		return nil
	}

	var notes *string
	if p.Notes != "" {
		notes = &p.Notes
	}

	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	// updated_at 不允许早于 created_at，乱序时钟取下界
	if updatedAt.Before(record.CreatedAt) {
		updatedAt = record.CreatedAt
	}

	return c.files.UpdateStatus(ctx, p.FileID, incoming, notes, updatedAt)
}

func notesEqual(existing *string, incoming string) bool {
	if incoming == "" {
		// 空备注保留已有值
		return true
	}

	return existing != nil && *existing == incoming
}
