package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/courtroom/internal/application"
)

const (
	DefaultBufferSize = 1024
	DefaultBatchSize  = 64
	publishTimeout    = 5 * time.Second
	retryDelay        = time.Second
)

var ErrBufferFull = errors.New("event buffer full")

// Writer is the part of Producer the publisher needs.
type Writer interface {
	Publish(ctx context.Context, msgs ...kafka.Message) error
}

// EventPublisher is an application.Listener that queues core events and
// publishes them to Kafka from its own goroutine, so a slow broker never
// holds up a tick.
type EventPublisher struct {
	w         Writer
	topic     string
	batchSize int
	queue     chan kafka.Message
	log       *zap.Logger
}

func NewEventPublisher(w Writer, topicPrefix string, log *zap.Logger) *EventPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventPublisher{
		w:         w,
		topic:     Topic(topicPrefix),
		batchSize: DefaultBatchSize,
		queue:     make(chan kafka.Message, DefaultBufferSize),
		log:       log,
	}
}

// Topic is the events topic for a prefix.
func Topic(prefix string) string {
	if prefix == "" {
		prefix = "courtroom"
	}
	return prefix + ".events"
}

func (p *EventPublisher) Name() string { return "kafka_publisher" }

// HandleEvent encodes ev and queues it. It never blocks.
func (p *EventPublisher) HandleEvent(ctx context.Context, ev application.Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Type, err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(ev.Key()),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
		},
	}

	select {
	case p.queue <- msg:
		return nil
	default:
		return fmt.Errorf("%w: dropped %s", ErrBufferFull, ev.Type)
	}
}

// Run drains the queue until ctx is done, then flushes what is left.
func (p *EventPublisher) Run(ctx context.Context) error {
	p.log.Info("event publisher started", zap.String("topic", p.topic))
	for {
		select {
		case <-ctx.Done():
			p.flush()
			p.log.Info("event publisher stopping")
			return nil
		case msg := <-p.queue:
			batch := p.collect(msg)
			for {
				err := p.publish(ctx, batch)
				if err == nil || ctx.Err() != nil {
					break
				}
				p.log.Error("event publish failed", zap.Int("batch", len(batch)), zap.Error(err))
				select {
				case <-ctx.Done():
				case <-time.After(retryDelay):
				}
			}
		}
	}
}

func (p *EventPublisher) collect(first kafka.Message) []kafka.Message {
	batch := []kafka.Message{first}
	for len(batch) < p.batchSize {
		select {
		case msg := <-p.queue:
			batch = append(batch, msg)
		default:
			return batch
		}
	}
	return batch
}

func (p *EventPublisher) publish(ctx context.Context, batch []kafka.Message) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.w.Publish(ctx, batch...)
}

// flush makes one best-effort attempt at whatever is still queued.
func (p *EventPublisher) flush() {
	var rest []kafka.Message
	for {
		select {
		case msg := <-p.queue:
			rest = append(rest, msg)
			continue
		default:
		}
		break
	}
	if len(rest) == 0 {
		return
	}
	if err := p.publish(context.Background(), rest); err != nil {
		p.log.Warn("dropping unpublished events", zap.Int("count", len(rest)), zap.Error(err))
	}
}
