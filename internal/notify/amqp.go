package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"notifeed/internal/domain"
)

const (
	amqpExchange   = "notifeed"
	amqpRoutingKey = "entries"
	amqpQueueName  = "notifeed_entries"
)

// AMQP publishes new-entry events to a RabbitMQ exchange, for setups
// that route notifications through their own consumers instead of a
// chat webhook. The channel endpoint is the broker URL.
type AMQP struct {
	url string
}

func NewAMQP(channel domain.Channel, _ *http.Client) (Sender, error) {
	return &AMQP{url: channel.Endpoint}, nil
}

// EntryMessage is the wire format published to the exchange.
type EntryMessage struct {
	Feed      string       `json:"feed"`
	Entry     domain.Entry `json:"entry"`
	Timestamp time.Time    `json:"timestamp"`
}

func (a *AMQP) Send(ctx context.Context, feedName string, entry domain.Entry) error {
	conn, err := amqp.Dial(a.url)
	if err != nil {
		return fmt.Errorf("connect to rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := declareTopology(ch); err != nil {
		return err
	}

	body, err := json.Marshal(EntryMessage{
		Feed:      feedName,
		Entry:     entry,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = ch.PublishWithContext(
		ctx,
		amqpExchange,
		amqpRoutingKey,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

func declareTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(amqpExchange, "direct", true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(amqpQueueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, amqpRoutingKey, amqpExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}
