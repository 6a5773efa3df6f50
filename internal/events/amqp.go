package events

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/Vovarama1992/rental-support-bridge/internal/logger"
	"github.com/Vovarama1992/rental-support-bridge/internal/support"
)

const maxDialDelay = 30 * time.Second

type AMQPPublisher struct {
	conn     *amqp091.Connection
	exchange string
	log      logger.Logger
}

// DialWithRetry connects to RabbitMQ with exponential backoff.
func DialWithRetry(ctx context.Context, url string, attempts int, delay time.Duration, log logger.Logger) (*amqp091.Connection, error) {
	var lastErr error
	for i := 1; i <= attempts; i++ {
		conn, err := amqp091.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		sleep := backoff(delay, i)
		log.Warn("rabbit dial failed", map[string]interface{}{
			"attempt": i,
			"sleep":   sleep.String(),
			"error":   err.Error(),
		})

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("dial cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, lastErr)
}

func backoff(base time.Duration, attempt int) time.Duration {
	d := base * time.Duration(math.Pow(2, float64(attempt-1)))
	if d > maxDialDelay || d <= 0 {
		return maxDialDelay
	}
	return d
}

// NewAMQPPublisher declares a durable topic exchange on conn.
func NewAMQPPublisher(conn *amqp091.Connection, exchange string, log logger.Logger) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &AMQPPublisher{
		conn:     conn,
		exchange: exchange,
		log:      log.WithFields(map[string]interface{}{"exchange": exchange}),
	}, nil
}

// Publish routes the event with its type as routing key.
func (p *AMQPPublisher) Publish(ctx context.Context, eventType string, n support.Notification) error {
	msg, err := buildPublishing(NewEnvelope(eventType, n))
	if err != nil {
		return err
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.PublishWithContext(ctx, p.exchange, eventType, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	p.log.Debug("published", map[string]interface{}{
		"key":            eventType,
		"notificationId": n.ID,
	})
	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}

func buildPublishing(env Envelope) (amqp091.Publishing, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("encode envelope: %w", err)
	}
	return amqp091.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp091.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: env.Data.ID,
		Type:          env.Meta.Type,
		Timestamp:     env.Meta.OccurredAt,
		Body:          body,
	}, nil
}

var _ support.Publisher = (*AMQPPublisher)(nil)
