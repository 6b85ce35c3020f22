package rabbitmq

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const attemptHeader = "x-attempt"

// HandlerFunc processes one message body. Returning an error schedules a
// retry until MaxAttempts is reached, after which the message goes to the DLQ.
type HandlerFunc func(ctx context.Context, body []byte) error

// ErrPermanent marks failures that must not be retried.
var ErrPermanent = errors.New("permanent failure")

type ConsumerOptions struct {
	Concurrency int
	MaxAttempts int
	RetryDelay  time.Duration
	Logger      *zap.Logger
}

type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	opts  ConsumerOptions
	log   *zap.Logger
}

func NewConsumer(url, queue string, opts ConsumerOptions) (*Consumer, error) {
	opts.Concurrency = clamp(opts.Concurrency, 1, 50, 2)
	opts.MaxAttempts = clamp(opts.MaxAttempts, 1, 20, 3)
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	conn, ch, err := dial(url, queue)
	if err != nil {
		return nil, err
	}
	// prefetch bounds in-flight deliveries to the pool size
	if err := ch.Qos(opts.Concurrency, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Consumer{conn: conn, ch: ch, queue: queue, opts: opts, log: opts.Logger}, nil
}

func (c *Consumer) Close() error {
	_ = c.ch.Close()
	return c.conn.Close()
}

// Run dispatches deliveries to a fixed pool of workers until ctx is done or
// the broker closes the delivery channel.
func (c *Consumer) Run(ctx context.Context, handle HandlerFunc) error {
	msgs, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.log.Info("consumer started",
		zap.String("queue", c.queue),
		zap.Int("concurrency", c.opts.Concurrency),
	)

	jobs := make(chan amqp.Delivery, c.opts.Concurrency*2)
	var pubMu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(c.opts.Concurrency)
	for i := 0; i < c.opts.Concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				c.process(ctx, workerID, d, handle, &pubMu)
			}
		}(i)
	}

	defer func() {
		close(jobs)
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("consumer shutting down")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			jobs <- d
		}
	}
}

func (c *Consumer) process(ctx context.Context, workerID int, d amqp.Delivery, handle HandlerFunc, pubMu *sync.Mutex) {
	attempt := attemptOf(d.Headers)
	log := c.log.With(
		zap.Int("worker", workerID),
		zap.String("message_id", d.MessageId),
		zap.Int("attempt", attempt),
	)

	start := time.Now()
	err := handle(ctx, d.Body)
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.Warn("ack failed", zap.Error(ackErr))
		}
		log.Debug("message handled", zap.Duration("cost", time.Since(start)))
		return
	}

	if errors.Is(err, ErrPermanent) || attempt >= c.opts.MaxAttempts {
		log.Error("message dead-lettered", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	pubMu.Lock()
	retryErr := c.ch.PublishWithContext(ctx, "", RetryQueue(c.queue), false, false, retryPublishing(d, attempt+1, c.opts.RetryDelay))
	pubMu.Unlock()
	if retryErr != nil {
		log.Error("retry publish failed, dead-lettering", zap.Error(err), zap.NamedError("retry_error", retryErr))
		_ = d.Nack(false, false)
		return
	}
	log.Warn("message scheduled for retry", zap.Error(err), zap.Duration("delay", c.opts.RetryDelay))
	_ = d.Ack(false)
}

func retryPublishing(d amqp.Delivery, attempt int, delay time.Duration) amqp.Publishing {
	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[attemptHeader] = int32(attempt)
	return amqp.Publishing{
		Headers:      headers,
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    d.MessageId,
		Type:         d.Type,
		Timestamp:    d.Timestamp,
		Expiration:   strconv.FormatInt(delay.Milliseconds(), 10),
		Body:         d.Body,
	}
}

// attemptOf reads the 1-based delivery attempt from headers.
func attemptOf(h amqp.Table) int {
	switch v := h[attemptHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 1
	}
}

func clamp(v, lo, hi, def int) int {
	if v <= 0 {
		return def
	}
	return min(max(v, lo), hi)
}
