package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lostyway/cloud-file-storage/pkg/internal/jobs"
	"github.com/lostyway/cloud-file-storage/pkg/internal/model"
	"github.com/lostyway/cloud-file-storage/pkg/internal/repo"
	"github.com/lostyway/cloud-file-storage/pkg/internal/storage/mq"
	"github.com/lostyway/cloud-file-storage/pkg/queue"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&model.UploadedFile{}, &model.OutboxEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func newTestBus() (*mq.Client, *gochannel.GoChannel) {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 16},
		watermill.NopLogger{},
	)

	return mq.NewWithPubSub(pubSub, pubSub), pubSub
}

func TestDispatcherTick(t *testing.T) {
	db := newTestDB(t)
	bus, pubSub := newTestBus()

	defer func() { _ = pubSub.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := bus.Subscribe(ctx, queue.TopicFileUploaded)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	outbox := repo.NewOutbox(db)
	fileID := uuid.New()
	payload := []byte(`{"header":{"topic":"file-uploaded-topic"},"payload":{}}`)

	if err := outbox.Append(ctx, &model.OutboxEvent{
		FileID:    fileID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	d := jobs.NewDispatcher(db, bus, 10)

	n, err := d.Tick(ctx)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}

	if n != 1 {
		t.Fatalf("expected 1 dispatched event, got %d", n)
	}

	select {
	case msg := <-msgs:
		// 负载必须与入库时的字节一致
		if string(msg.Payload) != string(payload) {
			t.Errorf("payload = %q, want %q", msg.Payload, payload)
		}

		if got := msg.Metadata.Get(mq.PartitionKeyMetadata); got != fileID.String() {
			t.Errorf("partition key = %q, want %q", got, fileID)
		}

		msg.Ack()
	case <-ctx.Done():
		t.Fatal("no message received")
	}

	var ev model.OutboxEvent
	if err := db.First(&ev, "file_id = ?", fileID).Error; err != nil {
		t.Fatalf("load outbox row: %v", err)
	}

	if !ev.Processed {
		t.Error("outbox row should be marked processed")
	}

	// 第二轮没有可分发的行
	n, err = d.Tick(ctx)
	if err != nil {
		t.Fatalf("second Tick: %v", err)
	}

	if n != 0 {
		t.Errorf("expected idle tick, dispatched %d", n)
	}
}

func TestDispatcherOrdersByCreation(t *testing.T) {
	db := newTestDB(t)
	bus, pubSub := newTestBus()

	defer func() { _ = pubSub.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs, err := bus.Subscribe(ctx, queue.TopicFileUploaded)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	outbox := repo.NewOutbox(db)
	base := time.Now().UTC().Add(-time.Minute)

	for i, body := range []string{"first", "second", "third"} {
		if err := outbox.Append(ctx, &model.OutboxEvent{
			FileID:    uuid.New(),
			Payload:   []byte(body),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	d := jobs.NewDispatcher(db, bus, 10)

	if _, err := d.Tick(ctx); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	for _, want := range []string{"first", "second", "third"} {
		select {
		case msg := <-msgs:
			if string(msg.Payload) != want {
				t.Errorf("payload = %q, want %q", msg.Payload, want)
			}

			msg.Ack()
		case <-ctx.Done():
			t.Fatalf("message %q not received", want)
		}
	}
}
