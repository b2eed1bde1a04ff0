package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lostyway/cloud-file-storage/pkg/internal/apperr"
	"github.com/lostyway/cloud-file-storage/pkg/internal/model"
	"github.com/lostyway/cloud-file-storage/pkg/internal/repo"
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

func newFileRecord(owner int64, name string, status model.FileStatus, createdAt time.Time) *model.UploadedFile {
	return &model.UploadedFile{
		FileID:      uuid.New(),
		FileName:    name,
		FullPath:    "user-" + uuid.NewString() + "-files/" + name,
		ContentType: model.ContentPDF,
		FileSize:    1,
		UploaderID:  owner,
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestFilesInsertDuplicate(t *testing.T) {
	files := repo.NewFiles(newTestDB(t))
	ctx := context.Background()

	rec := newFileRecord(1, "doc.pdf", model.StatusUploaded, time.Now().UTC())
	if err := files.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	dup := *rec
	dup.FileID = uuid.New()

	if err := files.Insert(ctx, &dup); !apperr.Is(err, apperr.KindAlreadyExists) {
		t.Errorf("expected AlreadyExists, got %v", err)
	}
}

func TestFilesFindByID(t *testing.T) {
	files := repo.NewFiles(newTestDB(t))
	ctx := context.Background()

	rec := newFileRecord(1, "doc.pdf", model.StatusUploaded, time.Now().UTC())
	if err := files.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := files.FindByID(ctx, rec.FileID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}

	if got.FullPath != rec.FullPath {
		t.Errorf("FullPath = %q, want %q", got.FullPath, rec.FullPath)
	}

	if _, err := files.FindByID(ctx, uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestFilesFindByPathAndOwner(t *testing.T) {
	files := repo.NewFiles(newTestDB(t))
	ctx := context.Background()

	rec := newFileRecord(7, "doc.pdf", model.StatusUploaded, time.Now().UTC())
	if err := files.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := files.FindByPathAndOwner(ctx, rec.FullPath, 7)
	if err != nil {
		t.Fatalf("FindByPathAndOwner: %v", err)
	}

	if got == nil || got.FileID != rec.FileID {
		t.Errorf("unexpected record: %+v", got)
	}

	// 缺失不是错误
	got, err = files.FindByPathAndOwner(ctx, rec.FullPath, 8)
	if err != nil {
		t.Fatalf("FindByPathAndOwner(miss): %v", err)
	}

	if got != nil {
		t.Errorf("expected nil for foreign owner, got %+v", got)
	}
}

func TestFilesUpdateStatus(t *testing.T) {
	files := repo.NewFiles(newTestDB(t))
	ctx := context.Background()

	rec := newFileRecord(1, "doc.pdf", model.StatusUploaded, time.Now().UTC())
	if err := files.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	notes := "processing started"
	now := time.Now().UTC()

	if err := files.UpdateStatus(ctx, rec.FileID, model.StatusProcessing, &notes, now); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, err := files.FindByID(ctx, rec.FileID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}

	if got.Status != model.StatusProcessing || got.Notes == nil || *got.Notes != notes {
		t.Errorf("unexpected record after update: %+v", got)
	}

	// nil notes 保留已有备注
	if err := files.UpdateStatus(ctx, rec.FileID, model.StatusCompleted, nil, now); err != nil {
		t.Fatalf("UpdateStatus(nil notes): %v", err)
	}

	got, _ = files.FindByID(ctx, rec.FileID)
	if got.Notes == nil || *got.Notes != notes {
		t.Errorf("notes should survive nil update: %+v", got)
	}

	if err := files.UpdateStatus(ctx, uuid.New(), model.StatusFailed, nil, now); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestFilesRetentionQueryAndDelete(t *testing.T) {
	files := repo.NewFiles(newTestDB(t))
	ctx := context.Background()

	old := time.Now().UTC().Add(-48 * time.Hour)
	fresh := time.Now().UTC()

	expired := newFileRecord(1, "old.pdf", model.StatusCompleted, old)
	failed := newFileRecord(1, "failed.pdf", model.StatusFailed, old)
	recent := newFileRecord(1, "recent.pdf", model.StatusCompleted, fresh)
	pending := newFileRecord(1, "pending.pdf", model.StatusUploaded, old)

	for _, r := range []*model.UploadedFile{expired, failed, recent, pending} {
		if err := files.Insert(ctx, r); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := files.FindByStatusInCreatedBefore(ctx,
		[]model.FileStatus{model.StatusCompleted, model.StatusFailed},
		time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("FindByStatusInCreatedBefore: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 expired records, got %d", len(got))
	}

	if err := files.Delete(ctx, expired.FileID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := files.FindByID(ctx, expired.FileID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("record should be gone, got %v", err)
	}
}
