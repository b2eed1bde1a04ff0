// Package mq 提供基于 Watermill 库的统一消息总线操作接口。
// 支持发布/订阅模式，并通过工厂模式抽象不同的总线实现。
//
// 支持的总线类型：
//   - Kafka（按消息元数据分区）
//   - NATS（支持 JetStream）
//
// 该包提供封装了 Publisher 和 Subscriber 的 Client，以及便捷的消息发布和订阅方法。
package mq

import (
	"context"
	"fmt"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	wmetrics "github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/lostyway/cloud-file-storage/pkg/configs"
	nlog "github.com/lostyway/cloud-file-storage/pkg/log"
	"github.com/lostyway/cloud-file-storage/pkg/metrics"
)

// PartitionKeyMetadata 消息元数据键，Kafka 后端以该值选择分区，
// 同一文件的事件因此保持有序.
const PartitionKeyMetadata = "partition_key"

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.BusConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var (
	factories = map[configs.BusType]Factory{}
)

// RegisterFactory 注册指定 BusType 的工厂.
func RegisterFactory(t configs.BusType, f Factory) {
	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的消息总线类型列表.
func GetRegisteredMQTypes() []configs.BusType {
	types := make([]configs.BusType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	return types
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	publisher  message.Publisher
	subscriber message.Subscriber
}

// Publish 便捷发布.
func (c *Client) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return fmt.Errorf("mq publisher not initialized")
	}

	for _, m := range msgs {
		if err := c.publisher.Publish(topic, m); err != nil {
			return err
		}
	}

	return nil
}

// Subscribe 便捷订阅.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, fmt.Errorf("mq subscriber not initialized")
	}

	ch, err := c.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}

	return ch, nil
}

// Close 关闭资源.
func (c *Client) Close() error {
	var err error

	if c.publisher != nil {
		if e := c.publisher.Close(); e != nil {
			err = e
		}
	}

	if c.subscriber != nil {
		if e := c.subscriber.Close(); e != nil {
			err = e
		}
	}

	return err
}

// NewWithPubSub 用现成的 Publisher/Subscriber 构造 Client，测试用.
func NewWithPubSub(pub message.Publisher, sub message.Subscriber) *Client {
	return &Client{publisher: pub, subscriber: sub}
}

var (
	mqOnce sync.Once
	mqInst *Client
	mqErr  error
)

// New 初始化消息总线（单例）.
func New(ctx context.Context) (*Client, error) {
	mqOnce.Do(func() {
		cfg := configs.GetConfig().Bus

		factory, ok := factories[cfg.Type]
		if !ok {
			mqErr = fmt.Errorf("unsupported bus type: %s", cfg.Type)
			return
		}

		logger := &zerologAdapter{l: nlog.Logger()}

		pub, sub, err := factory(ctx, &cfg, logger)
		if err != nil {
			mqErr = fmt.Errorf("init bus (%s): %w", cfg.Type, err)
			return
		}

		if configs.GetConfig().Metrics.Enabled {
			// 复用应用级注册表，指标随 HTTP /metrics 端点暴露
			metricsBuilder := wmetrics.NewPrometheusMetricsBuilder(metrics.Registry(), "", "")

			pub, err = metricsBuilder.DecoratePublisher(pub)
			if err != nil {
				mqErr = fmt.Errorf("decorate publisher with metrics: %w", err)
				return
			}

			sub, err = metricsBuilder.DecorateSubscriber(sub)
			if err != nil {
				mqErr = fmt.Errorf("decorate subscriber with metrics: %w", err)
				return
			}

			nlog.Logger().Info().Msg("bus metrics enabled")
		}

		mqInst = &Client{publisher: pub, subscriber: sub}

		nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("消息总线已初始化")
	})

	return mqInst, mqErr
}
