package order

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	EventCreated       = "order.created"
	EventStatusChanged = "order.status_changed"
	EventCancelled     = "order.cancelled"
)

// Event is published on order lifecycle changes, keyed by order id so all
// events for one order land in the same partition.
type Event struct {
	Type       string      `json:"type"`
	OrderID    string      `json:"order_id"`
	UserID     string      `json:"user_id"`
	Status     OrderStatus `json:"status"`
	OccurredAt time.Time   `json:"occurred_at"`
}

func (e Event) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

// EventPublisher delivers lifecycle events to interested consumers.
// Publishing is fire-and-forget: a broker failure is logged, never surfaced
// to the request path.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
	Close()
}

type kafkaPublisher struct {
	client *kgo.Client
	topic  string
}

// NewKafkaPublisher connects a franz-go producer for order lifecycle events.
func NewKafkaPublisher(brokers []string, topic string) (EventPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("events: failed to create kafka client: %w", err)
	}
	return &kafkaPublisher{client: client, topic: topic}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, event Event) {
	value, err := event.MarshalBinary()
	if err != nil {
		log.Error().Err(err).Str("event_type", event.Type).Msg("events: failed to marshal order event")
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.OrderID),
		Value: value,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			log.Error().Err(err).Str("event_type", event.Type).Str("order_id", event.OrderID).Msg("events: failed to publish order event")
		}
	})
}

func (p *kafkaPublisher) Close() {
	p.client.Close()
}

// NoopPublisher discards events. Used when no brokers are configured and in
// tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) {}
func (NoopPublisher) Close()                         {}
