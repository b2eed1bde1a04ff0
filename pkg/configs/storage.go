package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// StorageConfig S3 兼容对象存储配置.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

const (
	DefaultStorageEndpoint  = "localhost:9000" // 默认S3端点
	DefaultStorageAccessKey = "minioadmin"     // 默认访问密钥
	DefaultStorageSecretKey = "minioadmin"     // 默认秘密访问密钥
	DefaultStorageBucket    = "user-files"     // 默认存储桶名称
	DefaultStorageUseSSL    = false            // 默认是否使用SSL
	DefaultStorageRegion    = "us-east-1"      // 默认区域
)

// GetEndpointURL 获取完整的端点URL.
func (c *StorageConfig) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// setDefaults 设置对象存储配置的默认值.
func (c *StorageConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("storage.endpoint", DefaultStorageEndpoint)
	v.SetDefault("storage.access_key", DefaultStorageAccessKey)
	v.SetDefault("storage.secret_key", DefaultStorageSecretKey)
	v.SetDefault("storage.bucket", DefaultStorageBucket)
	v.SetDefault("storage.use_ssl", DefaultStorageUseSSL)
	v.SetDefault("storage.region", DefaultStorageRegion)
}
