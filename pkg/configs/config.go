// Package configs 管理应用程序配置，包括对象存储、元数据库、消息总线与后台任务的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing metadata DB config:
//
//	dsn := configs.GetConfig().Metadata.GetDSN()
//
// Example accessing object storage config:
//
//	endpoint := configs.GetConfig().Storage.GetEndpointURL()
package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/lostyway/cloud-file-storage/pkg/rule"
)

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Storage   StorageConfig   `mapstructure:"storage"`   // StorageConfig S3 对象存储配置
		Metadata  MetadataConfig  `mapstructure:"metadata"`  // MetadataConfig 元数据库配置
		Bus       BusConfig       `mapstructure:"bus"`       // BusConfig 消息总线配置
		Outbox    OutboxConfig    `mapstructure:"outbox"`    // OutboxConfig outbox 分发与清理配置
		Files     FilesConfig     `mapstructure:"files"`     // FilesConfig 文档保留策略配置
		Upload    UploadConfig    `mapstructure:"upload"`    // UploadConfig 上传限制配置
		Server    ServerConfig    `mapstructure:"server"`    // ServerConfig 服务器配置
		Log       LogConfig       `mapstructure:"log"`       // LogConfig 日志配置
		Auth      AuthConfig      `mapstructure:"auth"`      // AuthConfig 租户鉴权配置
		RateLimit RateLimitConfig `mapstructure:"ratelimit"` // RateLimitConfig 限流配置
		Cache     CacheConfig     `mapstructure:"cache"`     // CacheConfig 读缓存配置
		Breaker   BreakerConfig   `mapstructure:"breaker"`   // BreakerConfig 熔断配置
		Metrics   MetricsConfig   `mapstructure:"metrics"`   // MetricsConfig 指标配置
	}
)

// AppName 服务名，事件头与客户端标识使用.
const AppName = "cloud-file-storage"

// AppVersion 应用版本号，构建时可通过 ldflags 覆盖.
var AppVersion = "dev"

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
func InitConfig(path string) error {
	appViper = viper.New()
	// 设置默认值
	setAllDefaults(appViper)

	// 检查path是否是文件
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		// 是文件，使用SetConfigFile，Viper会自动检测类型
		appViper.SetConfigFile(path)
	} else {
		// 是目录，设置配置名和路径
		appViper.SetConfigName("config")
		appViper.AddConfigPath(path)
		appViper.AddConfigPath(path + "/configs")

		exts := []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

		for _, ext := range exts {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				appViper.SetConfigFile(cfg)

				break
			}
		}
	}

	appViper.AutomaticEnv()
	appViper.SetEnvPrefix("CLOUDSTORAGE")

	// 读取配置，缺省文件不视为错误（全部走默认值）
	if err := appViper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	// 解析到全局配置
	if err := appViper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// rule 标签校验，坏配置在启动期暴露而不是运行中
	if err := rule.ValidateStruct(&globalConfig); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	reloadConfigs(appViper, globalConfig.Server.ReloadConfig)

	return nil
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var (
		storageConfig   StorageConfig
		metadataConfig  MetadataConfig
		busConfig       BusConfig
		outboxConfig    OutboxConfig
		filesConfig     FilesConfig
		uploadConfig    UploadConfig
		serverConfig    ServerConfig
		logConfig       LogConfig
		authConfig      AuthConfig
		rateLimitConfig RateLimitConfig
		cacheConfig     CacheConfig
		breakerConfig   BreakerConfig
		metricsConfig   MetricsConfig
	)

	storageConfig.setDefaults(v)
	metadataConfig.setDefaults(v)
	busConfig.setDefaults(v)
	outboxConfig.setDefaults(v)
	filesConfig.setDefaults(v)
	uploadConfig.setDefaults(v)
	serverConfig.setDefaults(v)
	logConfig.setDefaults(v)
	authConfig.setDefaults(v)
	rateLimitConfig.setDefaults(v)
	cacheConfig.setDefaults(v)
	breakerConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}
	// 启用配置热重载
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)
		fmt.Println("Reloading configuration...")

		var next AppConfig
		if err := v.Unmarshal(&next); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
			return
		}

		// 热重载同样过校验，坏配置保留上一份生效配置
		if err := rule.ValidateStruct(&next); err != nil {
			fmt.Printf("Invalid config after reload, keeping previous: %v\n", err)
			return
		}

		globalConfig = next
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

func GetViper() *viper.Viper {
	return appViper
}
