// Package repo 封装元数据库访问，服务层与后台任务共用.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lostyway/cloud-file-storage/pkg/internal/apperr"
	"github.com/lostyway/cloud-file-storage/pkg/internal/model"
)

// Files 已上传文档的元数据访问.
type Files struct {
	db *gorm.DB
}

// NewFiles 创建元数据访问器.
func NewFiles(db *gorm.DB) *Files {
	return &Files{db: db}
}

// WithTx 返回绑定到指定事务的副本.
func (r *Files) WithTx(tx *gorm.DB) *Files {
	return &Files{db: tx}
}

// Insert 写入新记录. 唯一索引冲突映射为 AlreadyExists.
func (r *Files) Insert(ctx context.Context, f *model.UploadedFile) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.AlreadyExists("file already registered at %s", f.FullPath)
		}

		return apperr.StorageIO(err, "insert uploaded file")
	}

	return nil
}

// FindByID 按主键查询.
func (r *Files) FindByID(ctx context.Context, fileID uuid.UUID) (*model.UploadedFile, error) {
	var f model.UploadedFile

	err := r.db.WithContext(ctx).First(&f, "file_id = ?", fileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("file %s not found", fileID)
	}

	if err != nil {
		return nil, apperr.StorageIO(err, "find file %s", fileID)
	}

	return &f, nil
}

// FindByPathAndOwner 按对象键与上传者查询，缺失返回 (nil, nil).
func (r *Files) FindByPathAndOwner(ctx context.Context, fullPath string, uploaderID int64) (*model.UploadedFile, error) {
	var f model.UploadedFile

	err := r.db.WithContext(ctx).
		Where("full_path = ? AND uploader_id = ?", fullPath, uploaderID).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, apperr.StorageIO(err, "find file by path %s", fullPath)
	}

	return &f, nil
}

// FindByStatusInCreatedBefore 按状态集合与创建时间查询，保留期清理使用.
func (r *Files) FindByStatusInCreatedBefore(ctx context.Context, statuses []model.FileStatus, before time.Time) ([]model.UploadedFile, error) {
	var files []model.UploadedFile

	err := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?", statuses, before).
		Order("created_at, file_id").
		Find(&files).Error
	if err != nil {
		return nil, apperr.StorageIO(err, "find files for retention")
	}

	return files, nil
}

// UpdateStatus 更新状态与备注. notes 为 nil 时保留已有备注.
func (r *Files) UpdateStatus(ctx context.Context, fileID uuid.UUID, status model.FileStatus, notes *string, updatedAt time.Time) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": updatedAt,
	}
	if notes != nil {
		updates["notes"] = *notes
	}

	res := r.db.WithContext(ctx).
		Model(&model.UploadedFile{}).
		Where("file_id = ?", fileID).
		Updates(updates)
	if res.Error != nil {
		return apperr.StorageIO(res.Error, "update status of %s", fileID)
	}

	if res.RowsAffected == 0 {
		return apperr.NotFound("file %s not found", fileID)
	}

	return nil
}

// Delete 删除单条记录，保留期清理使用.
func (r *Files) Delete(ctx context.Context, fileID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&model.UploadedFile{}, "file_id = ?", fileID).Error; err != nil {
		return apperr.StorageIO(err, "delete file %s", fileID)
	}

	return nil
}
