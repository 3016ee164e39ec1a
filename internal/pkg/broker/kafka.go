package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"loyalty_points_api/pkg/logger"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, key string, event interface{}) error
	Topic() string
	Close() error
}

// Producer Kafka 生产者
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 创建 Kafka 生产者
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	return &Producer{writer: writer}
}

// Publish 序列化事件并写入 Kafka，同一 key 落在同一分区
func (p *Producer) Publish(ctx context.Context, key string, event interface{}) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: eventBytes,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (p *Producer) Topic() string {
	return p.writer.Topic
}

// Close 关闭生产者
func (p *Producer) Close() error {
	return p.writer.Close()
}

// LogPublisher 未配置 Kafka 时把事件写到日志
type LogPublisher struct {
	topic string
}

func NewLogPublisher(topic string) *LogPublisher {
	return &LogPublisher{topic: topic}
}

func (p *LogPublisher) Publish(ctx context.Context, key string, event interface{}) error {
	logger.Log.Info("event published",
		zap.String("topic", p.topic),
		zap.String("key", key),
		zap.Any("event", event),
	)
	return nil
}

func (p *LogPublisher) Topic() string {
	return p.topic
}

func (p *LogPublisher) Close() error {
	return nil
}

// New 根据配置选择发布器
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NewLogPublisher(topic)
	}
	return NewProducer(brokers, topic)
}
