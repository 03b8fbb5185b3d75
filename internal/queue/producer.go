package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Событие фиксированного перехода статуса; уходит только после того,
// как оптимистичное обновление подтверждено сервером.
type StatusChangedPayload struct {
	LeadID     string    `json:"lead_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    int       `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ProducerInterface interface {
	PublishStatusChanged(ctx context.Context, payload StatusChangedPayload) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(rmq *RabbitMQ) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: rmq.Conn,
		Ch:   rmq.Ch,
	}
}

func (p *RabbitMQProducer) PublishStatusChanged(ctx context.Context, payload StatusChangedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal status-changed payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish status-changed: %w", err)
	}
	return nil
}
