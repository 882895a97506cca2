package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"grimoire-server/internal/progression"
)

// Compile-time check to ensure implementation satisfies the interface.
var _ progression.EventPublisher = (*RabbitMQProgressPublisher)(nil)

// RabbitMQProgressPublisher delivers level-completion events to a durable
// queue, where the notification pipeline picks them up. The connection is
// owned by the caller; reconnection is not handled here.
type RabbitMQProgressPublisher struct {
	ch     *amqp091.Channel
	queue  string
	logger *zap.Logger
}

// NewRabbitMQProgressPublisher opens a channel and declares the queue.
func NewRabbitMQProgressPublisher(conn *amqp091.Connection, queue string, logger *zap.Logger) (*RabbitMQProgressPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("rabbitmq connection is nil")
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", queue, err)
	}

	return &RabbitMQProgressPublisher{
		ch:     ch,
		queue:  queue,
		logger: logger.Named("ProgressPublisher"),
	}, nil
}

// PublishLevelCompleted publishes one event with persistent delivery.
func (p *RabbitMQProgressPublisher) PublishLevelCompleted(ctx context.Context, event progression.LevelCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal level completion event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish level completion event",
			zap.String("levelID", event.LevelID), zap.Error(err))
		return fmt.Errorf("failed to publish level completion event: %w", err)
	}
	p.logger.Debug("Published level completion event",
		zap.String("userID", event.UserID), zap.String("levelID", event.LevelID))
	return nil
}

// Close releases the channel.
func (p *RabbitMQProgressPublisher) Close() error {
	return p.ch.Close()
}
