package configs

import (
	"time"

	"github.com/spf13/viper"
)

// BreakerConfig 对象存储/元数据库访问的熔断配置.
type BreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxRequests uint32        `mapstructure:"max_requests"` // 半开状态允许的探测请求数
	Interval    time.Duration `mapstructure:"interval"`     // 闭合状态计数窗口
	Timeout     time.Duration `mapstructure:"timeout"`      // 打开状态持续时间
	// FailureRatio 触发熔断的失败率阈值.
	FailureRatio float64 `mapstructure:"failure_ratio" rule:"min=0,max=1"`
	MinRequests  uint32  `mapstructure:"min_requests"`
}

// setDefaults 设置熔断配置的默认值.
func (c *BreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("breaker.enabled", false)
	v.SetDefault("breaker.max_requests", 3)
	v.SetDefault("breaker.interval", 60*time.Second)
	v.SetDefault("breaker.timeout", 30*time.Second)
	v.SetDefault("breaker.failure_ratio", 0.6)
	v.SetDefault("breaker.min_requests", 10)
}
