package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultExchange = "eventhub.events"

	// how long Publish waits for the broker to confirm its own message
	confirmWait = 2 * time.Second
)

// Envelope is the message body for every domain event.
type Envelope struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type Publisher struct {
	url      string
	exchange string
	now      func() time.Time

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	p := &Publisher{
		url:      url,
		exchange: exchange,
		now:      time.Now,
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}

	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
	return nil
}

// NewEnvelope wraps payload for routingKey with a fresh message id.
func NewEnvelope(routingKey string, payload any, at time.Time) (Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:    uuid.NewString(),
		Type:       routingKey,
		OccurredAt: at.UTC(),
		Payload:    body,
	}, nil
}

// Publish sends a persistent envelope to the topic exchange and waits for the
// broker's confirm of that delivery tag. Publishes are not mandatory, so an
// unroutable message is acked and is not an error: nobody may be bound yet.
func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	if routingKey == "" {
		return errors.New("missing routingKey")
	}

	env, err := NewEnvelope(routingKey, payload, p.now())
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		return errors.New("publisher channel not ready")
	}

	dc, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		MessageId:    env.EventID,
		Type:         routingKey,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    env.OccurredAt,
		Body:         body,
	})
	if err != nil {
		return err
	}

	if dc == nil {
		return errors.New("publisher channel not in confirm mode")
	}

	waitCtx, cancel := context.WithTimeout(ctx, confirmWait)
	defer cancel()
	ack, err := dc.WaitContext(waitCtx)
	if err != nil {
		return fmt.Errorf("confirm %s (tag %d): %w", routingKey, dc.DeliveryTag, err)
	}
	if !ack {
		return fmt.Errorf("publish %s nacked (tag %d)", routingKey, dc.DeliveryTag)
	}
	return nil
}
