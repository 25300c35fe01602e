package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/olyamironova/mbp-reconstructor/internal/domain"
	"github.com/olyamironova/mbp-reconstructor/internal/port"
)

var _ port.SnapshotPublisher = (*Publisher)(nil)

// Publisher streams emitted snapshots to a Kafka topic as JSON, keyed by
// symbol so one instrument's snapshots stay on one partition in order.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   topic,
		}),
	}
}

func (p *Publisher) Publish(ctx context.Context, snap *domain.Snapshot) error {
	value, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("kafka: marshal snapshot: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(snap.Symbol),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publish snapshot %d: %w", snap.Index, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
