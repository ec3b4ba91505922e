package event

import (
	"encoding/json"
	"fmt"

	"github.com/lephan/quokka/config"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
)

const AnswerSubmitted = "answer.submitted"

// Publisher sends domain events to a topic exchange. When RABBITMQ_URL is
// not configured the publisher is a no-op, same as the AI client when its
// key is absent.
type Publisher interface {
	Publish(eventType string, payload interface{}) error
	Close()
}

type publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(cfg *config.Config) (Publisher, error) {
	if cfg.Rabbit.URL == "" {
		log.Warn().Msg("RABBITMQ_URL is not set. Event publishing disabled.")
		return &publisher{}, nil
	}

	conn, err := amqp.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Rabbit.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Rabbit.Exchange, err)
	}

	log.Info().Str("exchange", cfg.Rabbit.Exchange).Msg("Event publisher connected")
	return &publisher{conn: conn, channel: ch, exchange: cfg.Rabbit.Exchange}, nil
}

func (p *publisher) Publish(eventType string, payload interface{}) error {
	if p.channel == nil {
		return nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return p.channel.Publish(
		p.exchange,
		eventType, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
