package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/muhammadheryan/contact-manager/model"
	"github.com/rabbitmq/amqp091-go"
)

const (
	contactEventsExchange = "contact_events_exchange"
	contactEventsQueue    = "contact_events_queue"
	contactEventsBinding  = "contact.#"
)

type Publisher struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	mu      sync.Mutex
}

func NewPublisher(host string, port int, user, password string) (*Publisher, error) {
	conn, channel, err := dialTopology(host, port, user, password)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, channel: channel}, nil
}

// dialTopology connects and declares the topic exchange, the durable queue and
// their binding. Publisher and consumer declare the same topology so either
// may start first.
func dialTopology(host string, port int, user, password string) (*amqp091.Connection, *amqp091.Channel, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%d/", user, password, host, port)
	conn, err := amqp091.Dial(dsn)
	if err != nil {
		return nil, nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	fail := func(err error) (*amqp091.Connection, *amqp091.Channel, error) {
		channel.Close()
		conn.Close()
		return nil, nil, err
	}

	err = channel.ExchangeDeclare(
		contactEventsExchange, // name
		"topic",               // type
		true,                  // durable
		false,                 // auto-delete
		false,                 // internal
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		return fail(err)
	}

	_, err = channel.QueueDeclare(
		contactEventsQueue, // name
		true,               // durable
		false,              // auto-delete
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		return fail(err)
	}

	err = channel.QueueBind(
		contactEventsQueue,    // queue name
		contactEventsBinding,  // routing key
		contactEventsExchange, // exchange
		false,                 // no-wait
		nil,                   // arguments
	)
	if err != nil {
		return fail(err)
	}

	return conn, channel, nil
}

// PublishContactEvent publishes ev with its event type as routing key.
func (p *Publisher) PublishContactEvent(ctx context.Context, ev model.ContactEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(
		ctx,
		contactEventsExchange, // exchange
		string(ev.Type),       // routing key
		false,                 // mandatory
		false,                 // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    ev.OccurredAt,
			Body:         body,
		},
	)
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
