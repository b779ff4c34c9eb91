package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes notifications for a delivery service to consume.
// Messages are keyed by recipient so one customer's notifications stay ordered.
type KafkaNotifier struct {
	writer messageWriter
	clock  domain.Clock
}

var _ domain.Notifier = (*KafkaNotifier)(nil)

type notificationMessage struct {
	domain.Notification
	RaisedAt time.Time `json:"raisedAt"`
}

func NewKafkaNotifier(brokers []string, topic string, clock domain.Clock) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		WriteTimeout:           5 * time.Second,
	}
	return newKafkaNotifier(writer, clock)
}

func newKafkaNotifier(writer messageWriter, clock domain.Clock) *KafkaNotifier {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &KafkaNotifier{writer: writer, clock: clock}
}

func (n *KafkaNotifier) Notify(ctx context.Context, recipient string, kind domain.NotificationKind, title string, body string) error {
	payload, err := json.Marshal(notificationMessage{
		Notification: domain.Notification{
			Recipient: recipient,
			Kind:      kind,
			Title:     title,
			Body:      body,
		},
		RaisedAt: n.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(recipient),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(kind)},
		},
	}); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
