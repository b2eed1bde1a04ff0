package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultServerHost     = "0.0.0.0"
	DefaultServerPort     = 8080
	DefaultServerBasePath = "/api/v1"
	DefaultServerTimeout  = 60 // 秒
)

// ServerConfig HTTP 服务器配置.
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"          rule:"min=1,max=65535"`
	BasePath     string `mapstructure:"base_path"`
	Timeout      int    `mapstructure:"timeout"       rule:"min=1"`
	Debug        bool   `mapstructure:"debug"`
	ReloadConfig bool   `mapstructure:"reload_config"`
}

// GetTimeoutDuration 请求超时时间.
func (c *ServerConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// setDefaults 设置服务器配置的默认值.
func (c *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.base_path", DefaultServerBasePath)
	v.SetDefault("server.timeout", DefaultServerTimeout)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.reload_config", false)
}
