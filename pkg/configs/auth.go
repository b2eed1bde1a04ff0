package configs

import "github.com/spf13/viper"

// AuthConfig 租户鉴权配置. 网关假设上游代理已完成认证，
// 仅从请求头读取租户标识（数字）.
type AuthConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Header    string   `mapstructure:"header"`
	SkipPaths []string `mapstructure:"skip_paths"`
	// DevTenant 开发模式下请求头缺失时的兜底租户，0 表示禁用.
	DevTenant int64 `mapstructure:"dev_tenant"`
}

// setDefaults 设置鉴权配置的默认值.
func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.header", "X-User-Id")
	v.SetDefault("auth.skip_paths", []string{"/health", "/metrics"})
	v.SetDefault("auth.dev_tenant", 0)
}
