package service

import (
	"bytes"
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lostyway/cloud-file-storage/pkg/configs"
	ctxPkg "github.com/lostyway/cloud-file-storage/pkg/context"
	"github.com/lostyway/cloud-file-storage/pkg/internal/apperr"
	"github.com/lostyway/cloud-file-storage/pkg/internal/model"
	"github.com/lostyway/cloud-file-storage/pkg/internal/pathutil"
	"github.com/lostyway/cloud-file-storage/pkg/internal/repo"
	"github.com/lostyway/cloud-file-storage/pkg/internal/storage/objstore"
	"github.com/lostyway/cloud-file-storage/pkg/internal/types"
	nlog "github.com/lostyway/cloud-file-storage/pkg/log"
	"github.com/lostyway/cloud-file-storage/pkg/metrics"
	"github.com/lostyway/cloud-file-storage/pkg/queue"
)

// contentTypeByExt 入库只接受的文档扩展名.
var contentTypeByExt = map[string]model.ContentType{
	"pdf":  model.ContentPDF,
	"docx": model.ContentDOCX,
	"xlsx": model.ContentXLSX,
}

// IntakeService 文档入库流水线：对象写入 + 元数据 + 出箱事件，同一事务提交.
type IntakeService struct {
	store    objstore.Store
	db       *gorm.DB
	files    *repo.Files
	outbox   *repo.Outbox
	maxBytes int64
}

// NewIntakeService 从请求上下文取出存储管理器构造服务.
func NewIntakeService(c context.Context) *IntakeService {
	dbClient := ctxPkg.GetDBClient(c)

	return NewIntakeServiceWith(
		ctxPkg.GetS3Client(c),
		dbClient.GetDB(),
		configs.GetConfig().Upload.MaxBytes,
	)
}

// NewIntakeServiceWith 用显式依赖构造服务，测试用.
func NewIntakeServiceWith(store objstore.Store, db *gorm.DB, maxBytes int64) *IntakeService {
	return &IntakeService{
		store:    store,
		db:       db,
		files:    repo.NewFiles(db),
		outbox:   repo.NewOutbox(db),
		maxBytes: maxBytes,
	}
}

// classifyExtension 由文件扩展名确定文档类型.
func classifyExtension(fileName string) (model.ContentType, error) {
	idx := strings.LastIndexByte(fileName, '.')
	if idx < 0 || idx == len(fileName)-1 {
		return "", apperr.BadFormat("unsupported document format: %s", fileName)
	}

	ext := strings.ToLower(fileName[idx+1:])

	ct, ok := contentTypeByExt[ext]
	if !ok {
		return "", apperr.BadFormat("unsupported document format: %s", fileName)
	}

	return ct, nil
}

// Intake 接收文档：校验体积与格式，对象写入、元数据插入与出箱事件
// 在同一事务内完成. 对象写入后的任何失败都会尽力清掉孤儿对象，
// 除非元数据里已有记录占用该键.
func (s *IntakeService) Intake(ctx context.Context, tenantID int64, fileName string, r io.Reader, size int64) (*types.IntakeResponse, error) {
	if size > s.maxBytes {
		return nil, apperr.TooLarge("file exceeds the %d byte limit", s.maxBytes)
	}

	name := path.Base(fileName)
	if name == "" || name == "." || name == "/" {
		return nil, apperr.InvalidArgument("missing file name")
	}

	contentType, err := classifyExtension(name)
	if err != nil {
		return nil, err
	}

	key := pathutil.RootPrefix(tenantID) + name
	if err := pathutil.ValidateFileKey(key); err != nil {
		return nil, err
	}

	existing, err := s.files.FindByPathAndOwner(ctx, key, tenantID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return nil, apperr.AlreadyExists("file already uploaded with id %s", existing.FileID)
	}

	if err := s.store.Put(ctx, pathutil.RootPrefix(tenantID), bytes.NewReader(nil), 0, markerContentType); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &model.UploadedFile{
		FileID:      uuid.New(),
		FileName:    name,
		FullPath:    key,
		ContentType: contentType,
		FileSize:    size,
		UploaderID:  tenantID,
		Status:      model.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	payload := queue.FileUploadedPayload{
		FileID:      record.FileID,
		FileName:    record.FileName,
		FullPath:    record.FullPath,
		ContentType: string(record.ContentType),
		FileSize:    record.FileSize,
		UploaderID:  record.UploaderID,
		Status:      string(record.Status),
		CreatedAt:   record.CreatedAt,
	}

	encoded, err := queue.Encode(queue.Message[queue.FileUploadedPayload]{
		Header:  queue.NewEventHeader(queue.TopicFileUploaded, queue.WithProducer(configs.AppName)),
		Payload: payload,
	})
	if err != nil {
		return nil, apperr.StorageIO(err, "encode upload event")
	}

	written := false

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.store.Put(ctx, key, r, size, record.ContentType.MIME()); err != nil {
			return err
		}

		written = true

		if err := s.files.WithTx(tx).Insert(ctx, record); err != nil {
			return err
		}

		return s.outbox.WithTx(tx).Append(ctx, &model.OutboxEvent{
			FileID:    record.FileID,
			Payload:   encoded,
			CreatedAt: now,
		})
	})
	if txErr != nil {
		if written {
			s.cleanupOrphan(ctx, key, tenantID)
		}

		return nil, txErr
	}

	metrics.UploadBytes.Observe(float64(size))

	return &types.IntakeResponse{
		FileID:  record.FileID,
		Message: "file accepted for processing",
		Owner:   tenantID,
	}, nil
}

// cleanupOrphan 尽力移除失败上传留下的孤儿对象. 键由原始文件名重导出，
// 若元数据已有记录占用该键则保留对象.
func (s *IntakeService) cleanupOrphan(ctx context.Context, key string, tenantID int64) {
	claimed, err := s.files.FindByPathAndOwner(ctx, key, tenantID)
	if err != nil || claimed != nil {
		return
	}

	if err := s.store.Remove(ctx, key); err != nil {
		nlog.Logger().Warn().Err(err).Str("key", key).Msg("orphan object cleanup failed")
	}
}

// GetStatus 查询文档处理状态，仅限上传者本人.
func (s *IntakeService) GetStatus(ctx context.Context, tenantID int64, fileID uuid.UUID) (*types.FileStatusResponse, error) {
	record, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if record.UploaderID != tenantID {
		return nil, apperr.NotFound("file %s not found", fileID)
	}

	return &types.FileStatusResponse{
		FileID:    record.FileID,
		Status:    string(record.Status),
		FileName:  record.FileName,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
		Notes:     record.Notes,
	}, nil
}

// OpenByID 打开入库文档的字节流，仅限上传者本人.
func (s *IntakeService) OpenByID(ctx context.Context, tenantID int64, fileID uuid.UUID) (*model.UploadedFile, io.ReadCloser, error) {
	record, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}

	if record.UploaderID != tenantID {
		return nil, nil, apperr.NotFound("file %s not found", fileID)
	}

	rc, err := s.store.Open(ctx, record.FullPath)
	if err != nil {
		return nil, nil, err
	}

	return record, rc, nil
}
