package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// RabbitMQService owns the publish side of the order lifecycle topology:
// one durable topic exchange, one queue per lifecycle event (routing key ==
// queue name) and a DLQ per queue. This service only publishes; consumers
// (notification, analytics) live in their own services.
type RabbitMQService struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewRabbitMQService(host, exchange string, topics []string) (*RabbitMQService, error) {
	conn, err := amqp.Dial(host)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	// dead-letter exchange shared by all lifecycle queues
	dlxName := exchange + ".dlx"
	err = ch.ExchangeDeclare(
		dlxName,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare dead-letter exchange: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange": dlxName,
	}
	for _, topic := range topics {
		_, err = ch.QueueDeclare(
			topic,
			true,
			false,
			false,
			false,
			args,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to declare queue %s: %w", topic, err)
		}

		err = ch.QueueBind(
			topic,    // queue name
			topic,    // routing key (same as queue name)
			exchange, // exchange
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to bind queue %s: %w", topic, err)
		}

		dlqName := topic + ".dlq"
		_, err = ch.QueueDeclare(
			dlqName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to declare DLQ %s: %w", dlqName, err)
		}

		err = ch.QueueBind(
			dlqName,
			"",
			dlxName,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to bind DLQ %s: %w", dlqName, err)
		}
	}

	return &RabbitMQService{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
	}, nil
}

// Publish sends a message to a topic on the exchange. Messages are
// persistent so they survive a broker restart.
func (s *RabbitMQService) Publish(topic string, body []byte) error {
	if topic == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	if body == nil {
		return fmt.Errorf("message body cannot be nil")
	}

	if s.conn.IsClosed() {
		return fmt.Errorf("connection to RabbitMQ is closed")
	}
	if s.channel == nil {
		return fmt.Errorf("channel is not initialized")
	}

	err := s.channel.Publish(
		s.exchange, // exchange
		topic,      // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to topic '%s': %w", topic, err)
	}
	return nil
}

// IsHealthy checks if the RabbitMQ connection is healthy
func (s *RabbitMQService) IsHealthy() bool {
	return !s.conn.IsClosed() && s.channel != nil
}

// Close closes the connection to RabbitMQ.
func (s *RabbitMQService) Close() {
	s.channel.Close()
	s.conn.Close()
}
