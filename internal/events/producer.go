package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"statsbot/internal/config"
	"statsbot/internal/domain/entities"
	"statsbot/internal/logger"
)

// MessageType 事件类型
type MessageType string

// 事件类型常量
const (
	TypeReportGenerated MessageType = "report.generated"
)

// Message 标准事件消息结构
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	TraceID   string          `json:"trace_id"`
}

// Producer 把报告快照事件写入Kafka，供下游消费
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   logger.Logger
}

// NewProducer 创建快照事件生产者
func NewProducer(cfg config.KafkaConfig, log logger.Logger) (*Producer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 5
	saramaCfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("创建Kafka生产者失败: %w", err)
	}

	return &Producer{
		producer: producer,
		topic:    cfg.SnapshotTopic,
		logger:   log,
	}, nil
}

// ReportGenerated 发送报告生成事件
func (p *Producer) ReportGenerated(ctx context.Context, report *entities.StatsReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("序列化报告失败: %w", err)
	}

	message := Message{
		Type:      TypeReportGenerated,
		Data:      data,
		Timestamp: time.Now().UTC(),
		Source:    "statsbot",
		TraceID:   logger.GetTraceID(ctx),
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(report.ID.String()),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("发送报告事件失败: %w", err)
	}

	p.logger.Debug("报告事件已发送, partition=%d offset=%d", partition, offset)
	return nil
}

// Close 关闭生产者
func (p *Producer) Close() error {
	return p.producer.Close()
}
