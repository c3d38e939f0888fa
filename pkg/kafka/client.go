// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"portfolio-chat-go/internal/config"
	"portfolio-chat-go/pkg/log"

	"github.com/segmentio/kafka-go"
)

// ChatMessageEvent 是一条聊天消息成功落库后发往 Kafka 的分析事件。
// 下游消费方（访问统计、会话分析）不在本服务范围内。
type ChatMessageEvent struct {
	SessionID string `json:"sessionId"`
	MessageID uint   `json:"messageId"`
	Role      string `json:"role"`
	Timestamp int64  `json:"timestamp"`
}

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
}

// ProduceChatMessageEvent 发送一条聊天消息事件到 Kafka。
// 生产者未初始化时（本地开发、测试环境）直接跳过。
func ProduceChatMessageEvent(ctx context.Context, event ChatMessageEvent) error {
	if producer == nil {
		return nil
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return producer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(event.SessionID),
			Value: eventBytes,
		},
	)
}
