// README: RabbitMQ connection for the order-event feed.
package infra

import (
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"
)

// Rabbit wraps one connection and channel. The dispatch backend binds a
// queue to the declared exchange and consumes order events from there.
type Rabbit struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewRabbit(url, exchange string) (*Rabbit, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	slog.Info("rabbitmq connected", "exchange", exchange)
	return &Rabbit{conn: conn, channel: ch}, nil
}

// Publish sends one message. Satisfies the outbox worker's publisher.
func (r *Rabbit) Publish(exchange, routingKey, contentType string, body []byte) error {
	return r.channel.Publish(exchange, routingKey, false, false, amqp.Publishing{
		ContentType: contentType,
		Body:        body,
	})
}

func (r *Rabbit) Close() error {
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			return err
		}
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
