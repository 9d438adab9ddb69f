package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the change feed needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaChannel appends changes to a Kafka topic keyed by event id, so every
// change to one event lands on the same partition in order.
type KafkaChannel struct {
	writer MessageWriter
}

func NewKafkaChannel(writer MessageWriter) *KafkaChannel {
	return &KafkaChannel{writer: writer}
}

func (k *KafkaChannel) Name() string { return "kafka" }

func (k *KafkaChannel) Send(ctx context.Context, change Change) error {
	value, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(change.EventID),
		Value: value,
		Time:  change.AppliedAt,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(change.Action)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write change to kafka: %w", err)
	}
	return nil
}
