package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lostyway/cloud-file-storage/pkg/internal/apperr"
	"github.com/lostyway/cloud-file-storage/pkg/internal/model"
)

// Outbox 事务性 outbox 行的访问器.
type Outbox struct {
	db *gorm.DB
}

// NewOutbox 创建 outbox 访问器.
func NewOutbox(db *gorm.DB) *Outbox {
	return &Outbox{db: db}
}

// WithTx 返回绑定到指定事务的副本.
func (r *Outbox) WithTx(tx *gorm.DB) *Outbox {
	return &Outbox{db: tx}
}

// Append 追加一行，必须与源记录同事务调用.
func (r *Outbox) Append(ctx context.Context, ev *model.OutboxEvent) error {
	if err := r.db.WithContext(ctx).Create(ev).Error; err != nil {
		return apperr.StorageIO(err, "append outbox event")
	}

	return nil
}

// FetchUnprocessed 在调用方事务内锁定并取出一批未处理行.
// 行锁带 SKIP LOCKED，多实例分发器互不阻塞；sqlite 无行锁，
// 靠其单写事务达到同等效果.
func (r *Outbox) FetchUnprocessed(ctx context.Context, tx *gorm.DB, limit int) ([]model.OutboxEvent, error) {
	q := tx.WithContext(ctx).
		Where("processed = ?", false).
		Order("created_at, id").
		Limit(limit)

	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}

	var events []model.OutboxEvent
	if err := q.Find(&events).Error; err != nil {
		return nil, apperr.StorageIO(err, "fetch unprocessed outbox events")
	}

	return events, nil
}

// MarkProcessed 将指定行翻到已处理.
func (r *Outbox) MarkProcessed(ctx context.Context, tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	err := tx.WithContext(ctx).
		Model(&model.OutboxEvent{}).
		Where("id IN ?", ids).
		Update("processed", true).Error
	if err != nil {
		return apperr.StorageIO(err, "mark outbox events processed")
	}

	return nil
}

// DeleteProcessedBefore 删除早于给定时间且已处理的行，返回删除数.
func (r *Outbox) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("processed = ? AND created_at < ?", true, before).
		Delete(&model.OutboxEvent{})
	if res.Error != nil {
		return 0, apperr.StorageIO(res.Error, "delete processed outbox events")
	}

	return res.RowsAffected, nil
}
