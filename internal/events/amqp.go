package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Handler processes one group-changed message. Returning an error requeues it.
type Handler func(ctx context.Context, msg *GroupChangedMessage) error

// Client publishes and consumes group-changed messages on a durable direct exchange.
type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	logger       *slog.Logger
}

func NewClient(url, exchangeName, queueName string, logger *slog.Logger) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logger,
	}
	if err := c.setup(); err != nil {
		c.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return c, nil
}

func (c *Client) setup() error {
	if err := c.channel.ExchangeDeclare(c.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := c.channel.QueueDeclare(c.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	// The queue name doubles as the routing key.
	if err := c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishGroupChanged publishes a persistent message for the group.
func (c *Client) PublishGroupChanged(ctx context.Context, groupID, reason string) error {
	body, err := NewGroupChangedMessage(groupID, reason).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(ctx, c.exchangeName, c.queueName, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	c.logger.DebugContext(ctx, "Published group changed message",
		"group_id", groupID,
		"reason", reason,
		"exchange", c.exchangeName,
	)
	return nil
}

// Consume delivers messages to handler until ctx is cancelled or the channel closes.
// Malformed messages are dropped, failed ones are requeued.
func (c *Client) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	msgs, err := c.channel.ConsumeWithContext(ctx, c.queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming group changes", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			switch dispatch(ctx, c.logger, delivery.Body, handler) {
			case outcomeAck:
				delivery.Ack(false)
			case outcomeDrop:
				delivery.Nack(false, false)
			case outcomeRequeue:
				delivery.Nack(false, true)
			}
		}
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

type outcome int

const (
	outcomeAck outcome = iota
	outcomeDrop
	outcomeRequeue
)

func dispatch(ctx context.Context, logger *slog.Logger, body []byte, handler Handler) outcome {
	msg, err := GroupChangedMessageFromJSON(body)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to decode message", "error", err)
		return outcomeDrop
	}

	if err := handler(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "Failed to handle message", "group_id", msg.GroupID, "error", err)
		return outcomeRequeue
	}

	logger.DebugContext(ctx, "Processed group changed message", "group_id", msg.GroupID, "reason", msg.Reason)
	return outcomeAck
}
