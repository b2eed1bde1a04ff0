// Package mq 提供 Kafka 消息总线实现。
// 此文件包含 Kafka 特定的工厂函数，发布端按 PartitionKeyMetadata
// 元数据选择分区，保证同一文件的事件在分区内有序；订阅端使用
// 消费组实现负载均衡与断点续传.
package mq

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/lostyway/cloud-file-storage/pkg/configs"
)

// init 注册 Kafka 工厂.
func init() {
	RegisterFactory(configs.BusTypeKafka, kafkaFactory)
}

// partitionFromMetadata 从消息元数据提取分区键.
func partitionFromMetadata(topic string, msg *message.Message) (string, error) {
	if key := msg.Metadata.Get(PartitionKeyMetadata); key != "" {
		return key, nil
	}

	// 无分区键时退回消息 UUID，不强加顺序
	return msg.UUID, nil
}

// kafkaFactory 创建 Kafka Publisher & Subscriber.
func kafkaFactory(
	ctx context.Context,
	cfg *configs.BusConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	marshaler := kafka.NewWithPartitioningMarshaler(partitionFromMetadata)

	pub, err := createKafkaPublisher(cfg, marshaler, logger)
	if err != nil {
		return nil, nil, err
	}

	sub, err := createKafkaSubscriber(cfg, marshaler, logger)
	if err != nil {
		return nil, nil, err
	}

	return pub, sub, nil
}

// createKafkaPublisher 创建 Publisher，同步发送以便出箱分发器确认投递.
func createKafkaPublisher(
	cfg *configs.BusConfig,
	marshaler kafka.MarshalerUnmarshaler,
	logger watermill.LoggerAdapter) (message.Publisher, error) {
	saramaCfg := kafka.DefaultSaramaSyncPublisherConfig()
	saramaCfg.ClientID = cfg.ClientID
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll

	return kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:               cfg.Bootstrap,
		Marshaler:             marshaler,
		OverwriteSaramaConfig: saramaCfg,
	}, logger)
}

// createKafkaSubscriber 创建消费组 Subscriber.
func createKafkaSubscriber(
	cfg *configs.BusConfig,
	marshaler kafka.MarshalerUnmarshaler,
	logger watermill.LoggerAdapter) (message.Subscriber, error) {
	saramaCfg := kafka.DefaultSaramaSubscriberConfig()
	saramaCfg.ClientID = cfg.ClientID
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	return kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               cfg.Bootstrap,
		Unmarshaler:           marshaler,
		ConsumerGroup:         cfg.ConsumerGroup,
		OverwriteSaramaConfig: saramaCfg,
	}, logger)
}
