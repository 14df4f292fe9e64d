package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer wraps a kafka.Writer for publishing messages.
type Producer struct {
	w *kafka.Writer
}

// NewProducer creates a Kafka writer that routes messages by the topic set on
// each kafka.Message. Messages with the same key land on the same partition.
func NewProducer(brokers []string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			BatchTimeout:           50 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish sends a batch of messages in one write.
func (p *Producer) Publish(ctx context.Context, msgs ...kafka.Message) error {
	return p.w.WriteMessages(ctx, msgs...)
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error { return p.w.Close() }
