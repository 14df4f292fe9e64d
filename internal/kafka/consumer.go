package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/courtroom/internal/application"
)

// Consume reads core events from the events topic and hands each to fn until
// ctx is done. Undecodable payloads are logged and skipped.
func Consume(ctx context.Context, brokers []string, topicPrefix, groupID string, log *zap.Logger, fn func(application.Event) error) error {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   Topic(topicPrefix),
		GroupID: groupID,
	})
	defer r.Close()

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		var ev application.Event
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			log.Warn("bad event payload", zap.Int64("offset", m.Offset), zap.Error(err))
			continue
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
}
