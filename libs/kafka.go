package libs

import (
	"context"
	"encoding/json"
	"time"

	"furniture-shop/models"

	"github.com/go-faster/errors"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const EventOrderCreated = "order.created"

type OrderCreatedEvent struct {
	Type       string             `json:"type"`
	OrderID    string             `json:"order_id"`
	OccurredAt time.Time          `json:"occurred_at"`
	Order      models.OrderIntent `json:"order"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEvents publishes order lifecycle events keyed by order id.
type OrderEvents struct {
	w     messageWriter
	topic string
	now   func() time.Time
}

func NewOrderEvents(brokers []string, topic string) *OrderEvents {
	return &OrderEvents{
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		topic: topic,
		now:   time.Now,
	}
}

func (e *OrderEvents) PublishOrderCreated(ctx context.Context, orderID string, intent models.OrderIntent) error {
	payload, err := json.Marshal(OrderCreatedEvent{
		Type:       EventOrderCreated,
		OrderID:    orderID,
		OccurredAt: e.now().UTC(),
		Order:      intent,
	})
	if err != nil {
		return errors.Wrap(err, "encode event")
	}

	msg := kafka.Message{
		Topic: e.topic,
		Key:   []byte(orderID),
		Value: payload,
		Headers: injectTraceHeaders(ctx, []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderCreated)},
		}),
	}
	if err := e.w.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, "write kafka message")
	}
	return nil
}

func (e *OrderEvents) Close() error {
	return e.w.Close()
}

func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}
