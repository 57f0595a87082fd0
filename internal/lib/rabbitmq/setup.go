package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// QueueConfig binds a durable queue to the exchange with a routing key.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Topology is the direct exchange and the queues bound to it.
type Topology struct {
	Exchange string
	Queues   []QueueConfig
}

// NotificationTopology returns the exchange and the upcoming-payment queue
// shared by the scheduler and the sender.
func NotificationTopology(exchange, queue, routingKey string) Topology {
	return Topology{
		Exchange: exchange,
		Queues:   []QueueConfig{{QueueName: queue, RoutingKey: routingKey}},
	}
}

// SetupChannel opens a channel on conn and declares t on it.
func SetupChannel(conn *amqp.Connection, t Topology) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: set qos: %w", op, err)
	}

	if err := ch.ExchangeDeclare(t.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, q := range t.Queues {
		if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: declare queue %s: %w", op, q.QueueName, err)
		}
		if err := ch.QueueBind(q.QueueName, q.RoutingKey, t.Exchange, false, nil); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("%s: bind queue %s with routing key %s: %w", op, q.QueueName, q.RoutingKey, err)
		}
	}

	return ch, nil
}
