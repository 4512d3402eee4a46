package notify

import (
	"context"

	"github.com/skyfare/skyfare/internal/kafka"
)

// Notifier is the notification-delivery capability. A disabled
// notifier is a silent downgrade, not an error: reminders simply do
// not surface anywhere.
type Notifier interface {
	Enabled() bool
	Show(ctx context.Context, title, body, tag string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// KafkaNotifier delivers notifications by publishing reminder events.
// The tag is used as the message key, so log-compacted or keyed
// consumers collapse repeated reminders for the same flight.
type KafkaNotifier struct {
	producer Producer
	topic    string
}

func NewKafkaNotifier(producer Producer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

func (n *KafkaNotifier) Enabled() bool {
	return n != nil && n.producer != nil && n.topic != ""
}

func (n *KafkaNotifier) Show(ctx context.Context, title, body, tag string) error {
	if !n.Enabled() {
		return nil
	}
	return n.producer.Publish(ctx, n.topic, tag, kafka.ReminderEvent{
		Tag:   tag,
		Title: title,
		Body:  body,
	})
}

var _ Notifier = (*KafkaNotifier)(nil)
