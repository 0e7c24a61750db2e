package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/muhammadheryan/contact-manager/model"
	"github.com/muhammadheryan/contact-manager/utils/logger"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ContactEventHandler processes one event. A returned error requeues the delivery.
type ContactEventHandler func(ctx context.Context, ev model.ContactEvent) error

type Consumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewConsumer(host string, port int, user, password string) (*Consumer, error) {
	conn, channel, err := dialTopology(host, port, user, password)
	if err != nil {
		return nil, err
	}
	return &Consumer{conn: conn, channel: channel}, nil
}

// Start consumes contact events until ctx is done or the channel closes. The
// returned channel is closed when the consume loop exits.
func (c *Consumer) Start(ctx context.Context, handle ContactEventHandler) (<-chan struct{}, error) {
	// Set QoS to 1 - process one message at a time
	err := c.channel.Qos(1, 0, false)
	if err != nil {
		return nil, err
	}

	msgs, err := c.channel.Consume(
		contactEventsQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				c.dispatch(ctx, msg, handle)
			}
		}
	}()

	return done, nil
}

func (c *Consumer) dispatch(ctx context.Context, msg amqp091.Delivery, handle ContactEventHandler) {
	var ev model.ContactEvent
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		// malformed bodies are dropped, not requeued
		logger.Error("[Consumer] unmarshal contact event", zap.String("error", err.Error()))
		_ = msg.Ack(false)
		return
	}

	if err := handle(ctx, ev); err != nil {
		logger.Error("[Consumer] handle contact event",
			zap.String("contact_id", ev.ContactID),
			zap.String("type", string(ev.Type)),
			zap.String("error", err.Error()))
		_ = msg.Nack(false, true)
		return
	}

	_ = msg.Ack(false)
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}
