package configs

import (
	"time"

	"github.com/spf13/viper"
)

type (
	KVType string
)

const (
	KVTypeMemory KVType = "memory"
	KVTypeRedis  KVType = "redis"
)

// CacheConfig 只读接口的响应缓存配置.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Type    KVType        `mapstructure:"type" rule:"oneof=memory redis"`
	TTL     time.Duration `mapstructure:"ttl"`

	// Redis 后端选项.
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// setDefaults 设置缓存配置的默认值.
func (c *CacheConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.type", string(KVTypeMemory))
	v.SetDefault("cache.ttl", 5*time.Second)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
}
