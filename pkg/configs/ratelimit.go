package configs

import "github.com/spf13/viper"

// RateLimitConfig 请求限流配置.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"   rule:"min=0"`
	Burst   int     `mapstructure:"burst" rule:"min=0"`
	// Key 限流维度：global 或 ip.
	Key string `mapstructure:"key" rule:"oneof=global ip"`
}

// setDefaults 设置限流配置的默认值.
func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.rps", 50)
	v.SetDefault("ratelimit.burst", 100)
	v.SetDefault("ratelimit.key", "ip")
}
