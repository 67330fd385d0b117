package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/i474232898/pest-advisory/internal/risk"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// AlertEvent is the record published for every generated alert.
type AlertEvent struct {
	District string     `json:"district"`
	FCMToken string     `json:"fcmToken,omitempty"`
	Alert    risk.Alert `json:"alert"`
}

// KafkaPublisher publishes alerts keyed by farmer uid, so one farmer's
// alerts stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher writes to topic on the given brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}}
}

func (p *KafkaPublisher) Notify(ctx context.Context, farmer risk.FarmerRecord, alerts []risk.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(alerts))
	for _, a := range alerts {
		value, err := json.Marshal(AlertEvent{District: farmer.District, FCMToken: farmer.FCMToken, Alert: a})
		if err != nil {
			return fmt.Errorf("encode alert event: %w", err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(farmer.UID),
			Value: value,
			Time:  time.UnixMilli(a.Timestamp),
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d alerts: %w", len(msgs), err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
