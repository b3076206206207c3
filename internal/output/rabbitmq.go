package output

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/chrisdamba/foodrollup/internal/models"
)

const publishTimeout = 10 * time.Second

// publisher is the slice of *amqp.Channel the output uses.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitOutput publishes each envelope to a durable topic exchange.
type RabbitOutput struct {
	conn       *amqp.Connection
	ch         publisher
	exchange   string
	routingKey string
	logger     *zap.Logger
}

func NewRabbitOutput(ctx context.Context, cfg models.RabbitMQConfig, logger *zap.Logger) (*RabbitOutput, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("rabbitmq output needs a url")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	out := newRabbitOutput(ch, cfg, logger)
	out.conn = conn
	return out, nil
}

func newRabbitOutput(ch publisher, cfg models.RabbitMQConfig, logger *zap.Logger) *RabbitOutput {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RabbitOutput{
		ch:         ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}
}

// WriteMessage routes on the configured key, falling back to the topic.
func (r *RabbitOutput) WriteMessage(topic string, msg []byte) error {
	key := r.routingKey
	if key == "" {
		key = topic
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err := r.ch.PublishWithContext(ctx, r.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         topic,
		Body:         msg,
		Timestamp:    time.Now(),
	})
	if err != nil {
		r.logger.Error("failed to publish report", zap.String("exchange", r.exchange), zap.String("routing_key", key), zap.Error(err))
		return err
	}
	return nil
}

func (r *RabbitOutput) Close() error {
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
