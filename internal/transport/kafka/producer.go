package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"

	"courier-dispatch/internal/domain"
)

var newSyncProducer = sarama.NewSyncProducer

// HistoryProducer publishes committed order history entries keyed by order id.
type HistoryProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewHistoryProducer returns nil, nil when Kafka is not configured.
func NewHistoryProducer(brokers []string, topic string) (*HistoryProducer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topic) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3

	p, err := newSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &HistoryProducer{producer: p, topic: topic}, nil
}

// Publish sends e. A nil producer drops the entry.
func (p *HistoryProducer) Publish(ctx context.Context, e domain.HistoryEntry) error {
	if p == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal history entry %s: %w", e.ID, err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.OrderID),
		Value: sarama.ByteEncoder(b),
	})
	if err != nil {
		return fmt.Errorf("publish history entry %s: %w", e.ID, err)
	}
	return nil
}

// Close closes the producer.
func (p *HistoryProducer) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}
