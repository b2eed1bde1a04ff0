package configs

import (
	"github.com/spf13/viper"
)

type (
	BusType string
)

const (
	BusTypeKafka BusType = "kafka"
	BusTypeNATS  BusType = "nats"
)

const (
	DefaultBusType          = string(BusTypeKafka)
	DefaultBusBootstrap     = "localhost:9092"            // 默认 broker 地址
	DefaultBusConsumerGroup = "file-status-service-group" // 默认消费组
	DefaultBusClientID      = "cloud-file-storage"        // 默认客户端标识
	DefaultBusMaxReconnects = 10                          // NATS 最大重连次数
	DefaultBusReconnectWait = 2                           // NATS 重连等待秒数
	DefaultBusPingInterval  = 20                          // NATS 心跳秒数
)

// BusConfig 消息总线配置. Bootstrap 为 broker 地址列表（Kafka bootstrap servers 或 NATS URLs）.
type BusConfig struct {
	Type          BusType  `mapstructure:"type"           rule:"oneof=kafka nats"`
	Bootstrap     []string `mapstructure:"bootstrap"      rule:"min=1"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
	ClientID      string   `mapstructure:"client_id"`

	// NATS 专用选项，Kafka 后端忽略.
	MaxReconnects int  `mapstructure:"max_reconnects"`
	ReconnectWait int  `mapstructure:"reconnect_wait"`
	PingInterval  int  `mapstructure:"ping_interval"`
	JetStream     bool `mapstructure:"jetstream"`
}

// setDefaults 设置消息总线配置的默认值.
func (c *BusConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("bus.type", DefaultBusType)
	v.SetDefault("bus.bootstrap", []string{DefaultBusBootstrap})
	v.SetDefault("bus.consumer_group", DefaultBusConsumerGroup)
	v.SetDefault("bus.client_id", DefaultBusClientID)
	v.SetDefault("bus.max_reconnects", DefaultBusMaxReconnects)
	v.SetDefault("bus.reconnect_wait", DefaultBusReconnectWait)
	v.SetDefault("bus.ping_interval", DefaultBusPingInterval)
	v.SetDefault("bus.jetstream", false)
}
