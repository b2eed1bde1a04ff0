package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lostyway/cloud-file-storage/pkg/internal/model"
	"github.com/lostyway/cloud-file-storage/pkg/internal/repo"
)

func TestOutboxFetchOrderAndMark(t *testing.T) {
	db := newTestDB(t)
	outbox := repo.NewOutbox(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Minute)
	for i := range 3 {
		ev := &model.OutboxEvent{
			FileID:    uuid.New(),
			Payload:   []byte{byte('a' + i)},
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := outbox.Append(ctx, ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	var fetched []model.OutboxEvent

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error

		fetched, err = outbox.FetchUnprocessed(ctx, tx, 2)
		if err != nil {
			return err
		}

		return outbox.MarkProcessed(ctx, tx, []uint{fetched[0].ID, fetched[1].ID})
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}

	if len(fetched) != 2 {
		t.Fatalf("expected batch of 2, got %d", len(fetched))
	}

	// created_at 升序
	if string(fetched[0].Payload) != "a" || string(fetched[1].Payload) != "b" {
		t.Errorf("unexpected order: %q %q", fetched[0].Payload, fetched[1].Payload)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		rest, err := outbox.FetchUnprocessed(ctx, tx, 10)
		if err != nil {
			return err
		}

		if len(rest) != 1 || string(rest[0].Payload) != "c" {
			t.Errorf("unexpected remainder: %+v", rest)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestOutboxMarkProcessedEmpty(t *testing.T) {
	db := newTestDB(t)
	outbox := repo.NewOutbox(db)

	if err := outbox.MarkProcessed(context.Background(), db, nil); err != nil {
		t.Fatalf("MarkProcessed(empty): %v", err)
	}
}

func TestOutboxDeleteProcessedBefore(t *testing.T) {
	db := newTestDB(t)
	outbox := repo.NewOutbox(db)
	ctx := context.Background()

	old := time.Now().UTC().Add(-48 * time.Hour)

	events := []*model.OutboxEvent{
		{FileID: uuid.New(), Payload: []byte("old-done"), Processed: true, CreatedAt: old},
		{FileID: uuid.New(), Payload: []byte("old-pending"), Processed: false, CreatedAt: old},
		{FileID: uuid.New(), Payload: []byte("new-done"), Processed: true, CreatedAt: time.Now().UTC()},
	}
	for _, ev := range events {
		if err := outbox.Append(ctx, ev); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	n, err := outbox.DeleteProcessedBefore(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteProcessedBefore: %v", err)
	}

	// 未处理的行无论多旧都不许删
	if n != 1 {
		t.Errorf("expected 1 deleted row, got %d", n)
	}

	var remaining int64
	if err := db.Model(&model.OutboxEvent{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count: %v", err)
	}

	if remaining != 2 {
		t.Errorf("expected 2 remaining rows, got %d", remaining)
	}
}
