package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultOutboxBatchSize     = 100             // 默认分发批大小
	DefaultOutboxInterval      = 2 * time.Second // 默认分发间隔
	DefaultOutboxRetentionCron = "0 4 * * *"     // 默认 outbox 清理计划
	DefaultOutboxRetention     = 7 * 24 * time.Hour

	DefaultFilesRetentionCron = "30 4 * * *" // 默认文档保留清理计划
	DefaultFilesRetention     = 7 * 24 * time.Hour

	DefaultUploadMaxBytes = 10 << 20 // 默认上传体积上限 10 MiB
)

// OutboxConfig outbox 分发器与清理任务配置.
type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size"     rule:"min=1"`
	Interval      time.Duration `mapstructure:"interval"`
	RetentionCron string        `mapstructure:"retention_cron"`
	Retention     time.Duration `mapstructure:"retention"`
}

// setDefaults 设置 outbox 配置的默认值.
func (c *OutboxConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("outbox.batch_size", DefaultOutboxBatchSize)
	v.SetDefault("outbox.interval", DefaultOutboxInterval)
	v.SetDefault("outbox.retention_cron", DefaultOutboxRetentionCron)
	v.SetDefault("outbox.retention", DefaultOutboxRetention)
}

// FilesConfig 已完结文档的保留策略配置.
type FilesConfig struct {
	RetentionCron string        `mapstructure:"retention_cron"`
	Retention     time.Duration `mapstructure:"retention"`
}

// setDefaults 设置文档保留配置的默认值.
func (c *FilesConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("files.retention_cron", DefaultFilesRetentionCron)
	v.SetDefault("files.retention", DefaultFilesRetention)
}

// UploadConfig 上传限制配置.
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes" rule:"min=1"`
}

// setDefaults 设置上传配置的默认值.
func (c *UploadConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upload.max_bytes", DefaultUploadMaxBytes)
}
