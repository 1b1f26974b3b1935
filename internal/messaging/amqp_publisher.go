// Package messaging mirrors change events to a message broker for consumers outside the browser.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/websocket"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// DefaultPublishTimeout bounds a single broker publish
const DefaultPublishTimeout = 5 * time.Second

// channel is the subset of *amqp091.Channel the publisher uses
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPPublisher publishes change events to a topic exchange.
// The routing key is the event type, e.g. "Bank.created", so consumers bind with patterns like "Bank.*".
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
	timeout  time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

var _ websocket.EventPublisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher dials url and declares the durable topic exchange
func NewAMQPPublisher(url, exchange string, logger zerolog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p := newAMQPPublisher(ch, exchange, logger)
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch channel, exchange string, logger zerolog.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		channel:  ch,
		exchange: exchange,
		timeout:  DefaultPublishTimeout,
		logger:   logger.With().Str("component", "amqp_publisher").Logger(),
		now:      time.Now,
	}
}

// Publish sends event to the exchange. Failures are logged, not returned.
func (p *AMQPPublisher) Publish(event websocket.Event) {
	body, err := event.ToJSON()
	if err != nil {
		p.logger.Error().Err(err).Str("event", event.Type).Msg("Failed to marshal event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		event.Type, // routing key
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    p.now(),
			Type:         event.Type,
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error().Err(err).Str("event", event.Type).Str("exchange", p.exchange).Msg("Failed to publish event")
		return
	}

	p.logger.Debug().Str("event", event.Type).Str("exchange", p.exchange).Msg("Published event")
}

// Close closes the channel and the connection
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
