package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"budget/internal/core"
	applog "budget/internal/log"
)

const (
	routingKeyPaycheck = "paycheck.allocated"
	routingKeyBalance  = "balance.updated"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// One queue receives both event kinds
	err = c.channel.QueueBind(
		c.queueName,
		"#",
		c.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishPaycheckAllocated publishes a paycheck allocation event
func (c *Client) PublishPaycheckAllocated(ctx context.Context, paycheckID int64, amount decimal.Decimal) error {
	msg := NewPaycheckAllocatedMessage(paycheckID, amount.StringFixed(2))
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, routingKeyPaycheck, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published paycheck allocated message",
		applog.FieldPaycheckID, paycheckID,
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

// PublishBalanceUpdated publishes a balance change event
func (c *Client) PublishBalanceUpdated(ctx context.Context, update core.BalanceUpdate) error {
	msg := &BalanceUpdatedMessage{
		EntityType: string(update.EntityType),
		EntityID:   update.EntityID,
		OldBalance: update.OldBalance.StringFixed(2),
		NewBalance: update.NewBalance.StringFixed(2),
		Date:       update.Date.String(),
		Timestamp:  time.Now(),
	}
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, routingKeyBalance, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published balance updated message",
		applog.FieldEntityType, msg.EntityType,
		applog.FieldEntityID, msg.EntityID,
		"exchange", c.exchangeName)

	return nil
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
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
	return nil
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
