package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/satorioh/dashop/internal/entity"
)

// Kafka publishes order lifecycle events for downstream consumers
// (confirmation mail, analytics). Delivery is fire-and-forget: a broker
// problem is logged and never fails the already-committed order.
type Kafka struct {
	writer *kafka.Writer
}

func NewKafka(writer *kafka.Writer) *Kafka {
	return &Kafka{writer: writer}
}

// OrderCreated emits an order.created event keyed by order id.
func (n *Kafka) OrderCreated(ctx context.Context, order *entity.Order) {
	payload, err := json.Marshal(order)
	if err != nil {
		log.Error().Err(err).Msgf("marshal order %s for event failed", order.OrderID)
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order.created.%s", order.OrderID)),
		Value: payload,
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		log.Error().Err(err).Msgf("publish order.created event for %s failed", order.OrderID)
	}
}
