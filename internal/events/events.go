// Package events is the order-lifecycle push channel. Delivery is
// at-most-once and best-effort: there is no retry, no persistence and no
// backlog. Observers connected after an event simply never see it.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/skvortsovm/shop-backend/internal/models"
)

const (
	EventOrderNew           = "order:new"
	EventOrderStatusUpdated = "order:status-updated"
)

// Publisher fans an order event out to whoever is listening right now.
// Implementations must never fail the calling request: errors are logged
// and swallowed.
type Publisher interface {
	Publish(ctx context.Context, event string, order *models.Order)
}

type envelope struct {
	Event      string        `json:"event"`
	Order      *models.Order `json:"order"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// Fanout broadcasts to the websocket hub and publishes to Kafka. Either
// sink may be nil.
type Fanout struct {
	Hub   *Hub
	Kafka *KafkaPublisher
	Log   *slog.Logger
}

func (f *Fanout) Publish(ctx context.Context, event string, order *models.Order) {
	l := f.Log
	if l == nil {
		l = slog.Default()
	}

	data, err := json.Marshal(envelope{Event: event, Order: order, OccurredAt: time.Now().UTC()})
	if err != nil {
		l.Error("event_marshal_error", "event", event, "error", err)
		return
	}

	if f.Hub != nil {
		f.Hub.Broadcast(data)
	}
	if f.Kafka != nil {
		if err := f.Kafka.Publish(ctx, order.ID.String(), data); err != nil {
			l.Warn("event_kafka_error", "event", event, "order_id", order.ID, "error", err)
		}
	}
}
