package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/imcoderdev/emergency-backend/internal/models"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaSink публикует события об инцидентах в топик Kafka
type KafkaSink struct {
	writer messageWriter
}

// NewKafkaSink создает продюсер для топика событий
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaSink{writer: w}
}

func (k *KafkaSink) Broadcast(ctx context.Context, event models.Event) error {
	msg, err := serializeEvent(event)
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write event to kafka: %w", err)
	}
	return nil
}

func (k *KafkaSink) Close() error {
	return k.writer.Close()
}

// serializeEvent кладет все события одного инцидента в одну партицию (ключ - ID инцидента)
func serializeEvent(event models.Event) (kafkago.Message, error) {
	if event.Incident == nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident event: missing incident")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Incident.ID.String()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_kind", Value: []byte(event.Kind)},
			{Key: "emitted_at", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}
