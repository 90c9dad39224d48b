// Package queue consumes the scheduled "daily-chore-reset" message from
// RabbitMQ and can publish it on demand.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"bounceBackAPI/internal/types/chore"
)

const DefaultQueue = "daily-chore-reset"

// ResetMessage is the body of a reset trigger. Every field is optional; an
// empty body means "sweep now with the consumer's default policy".
// RequestedAt, when set, is the instant the sweep evaluates chores against.
type ResetMessage struct {
	Policy      chore.Policy `json:"policy,omitempty"`
	RequestedAt *time.Time   `json:"requestedAt,omitempty"`
}

func DecodeResetMessage(body []byte, fallback chore.Policy) (ResetMessage, error) {
	var msg ResetMessage
	if len(body) > 0 {
		if err := json.Unmarshal(body, &msg); err != nil {
			return ResetMessage{}, fmt.Errorf("decode reset message: %w", err)
		}
	}
	if msg.Policy == "" {
		msg.Policy = fallback
	}
	if _, err := chore.ParsePolicy(string(msg.Policy)); err != nil {
		return ResetMessage{}, err
	}
	return msg, nil
}

// SweepFunc runs one reset sweep.
type SweepFunc func(ctx context.Context, now time.Time, policy chore.Policy) error

type ResetConsumer struct {
	url     string
	queue   string
	policy  chore.Policy
	sweep   SweepFunc
	logger  *zap.Logger
	nowFunc func() time.Time
}

func NewResetConsumer(url, queue string, policy chore.Policy, sweep SweepFunc, logger *zap.Logger) *ResetConsumer {
	if queue == "" {
		queue = DefaultQueue
	}
	return &ResetConsumer{
		url:     url,
		queue:   queue,
		policy:  policy,
		sweep:   sweep,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// Run consumes until ctx is done or the connection drops.
func (c *ResetConsumer) Run(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if _, err := declare(ch, c.queue); err != nil {
		return err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("consuming reset triggers",
		zap.String("queue", c.queue),
		zap.String("default_policy", string(c.policy)))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("reset queue channel closed")
			}
			c.handle(ctx, msg)
		}
	}
}

// handle acks a processed or undecodable message. A failed sweep is
// requeued once.
func (c *ResetConsumer) handle(ctx context.Context, msg amqp.Delivery) {
	decoded, err := DecodeResetMessage(msg.Body, c.policy)
	if err != nil {
		c.logger.Error("dropping malformed reset message", zap.Error(err))
		if err := msg.Nack(false, false); err != nil {
			c.logger.Warn("nack failed", zap.Error(err))
		}
		return
	}

	now := c.nowFunc()
	if decoded.RequestedAt != nil && !decoded.RequestedAt.IsZero() {
		now = *decoded.RequestedAt
	}

	if err := c.sweep(ctx, now, decoded.Policy); err != nil {
		c.logger.Error("reset sweep failed",
			zap.String("policy", string(decoded.Policy)),
			zap.Bool("redelivered", msg.Redelivered),
			zap.Error(err))
		if err := msg.Nack(false, !msg.Redelivered); err != nil {
			c.logger.Warn("nack failed", zap.Error(err))
		}
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Warn("ack failed", zap.Error(err))
	}
}

// Publish enqueues one reset trigger.
func Publish(ctx context.Context, url, queue string, msg ResetMessage) error {
	if queue == "" {
		queue = DefaultQueue
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode reset message: %w", err)
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if _, err := declare(ch, queue); err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish reset message: %w", err)
	}
	return nil
}

func declare(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return q, nil
}
