package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/serene-backend/internal/safety"
)

// ErrNotConfirmed means the broker nacked a publish.
var ErrNotConfirmed = errors.New("rabbitmq: publish not confirmed by broker")

type Publisher struct {
	mu    sync.Mutex // amqp channels are not safe for concurrent publishing
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, ch, err := dial(url, queue)
	if err != nil {
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *Publisher) PublishAlert(ctx context.Context, a safety.Alert) error {
	body, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return p.publish(ctx, p.queue, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    a.ID,
		Type:         "safety.alert",
		Body:         body,
		Timestamp:    time.Now(),
	})
}

// publish waits up to 5s for the broker to confirm the message.
func (p *Publisher) publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p.mu.Lock()
	dc, err := p.ch.PublishWithDeferredConfirmWithContext(cctx,
		"",         // default exchange
		routingKey, // routing key = queue
		false,
		false,
		msg,
	)
	p.mu.Unlock()
	if err != nil {
		return err
	}
	return confirmed(dc.WaitContext(cctx))
}

func confirmed(ack bool, err error) error {
	if err != nil {
		return fmt.Errorf("wait for publish confirm: %w", err)
	}
	if !ack {
		return ErrNotConfirmed
	}
	return nil
}
