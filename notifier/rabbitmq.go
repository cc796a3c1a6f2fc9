package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	auth "github.com/goliatone/go-loan-auth"
)

// DefaultQueue is the durable queue email jobs are published to.
const DefaultQueue = "auth.email_jobs"

// Publisher is the subset of *amqp.Channel used to publish jobs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Queue publishes notifications as JSON jobs for an out of process mailer.
type Queue struct {
	publisher Publisher
	queue     string
	logger    auth.Logger
	closers   []func() error
}

var _ auth.Notifier = (*Queue)(nil)

// NewQueue returns a Queue publishing to queue on publisher.
func NewQueue(publisher Publisher, queue string, logger auth.Logger) *Queue {
	if queue == "" {
		queue = DefaultQueue
	}
	if logger == nil {
		logger = auth.NewSlogLogger(nil)
	}
	return &Queue{publisher: publisher, queue: queue, logger: logger}
}

// DialQueue connects to url, opens a channel and declares a durable queue.
func DialQueue(url, queue string, logger auth.Logger) (*Queue, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	ch, closeFn, err := DialChannel(url, queue)
	if err != nil {
		return nil, err
	}
	q := NewQueue(ch, queue, logger)
	q.closers = []func() error{closeFn}
	return q, nil
}

// DialChannel connects to url and declares queue as durable. The returned
// func closes the channel and then the connection.
func DialChannel(url, queue string) (*amqp.Channel, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("notifier: amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("notifier: amqp channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("notifier: amqp declare %s: %w", queue, err)
	}

	closeFn := func() error {
		return errors.Join(ch.Close(), conn.Close())
	}
	return ch, closeFn, nil
}

// Close closes the channel and connection opened by DialQueue.
func (q *Queue) Close() error {
	var errs []error
	for _, c := range q.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Send implements auth.Notifier.
func (q *Queue) Send(ctx context.Context, n auth.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("notifier: encode job: %w", err)
	}

	err = q.publisher.PublishWithContext(ctx,
		"",      // exchange
		q.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("notifier: publish to %s: %w", q.queue, err)
	}

	q.logger.Debug("notification queued", "queue", q.queue, "to", n.To)
	return nil
}

// DefaultJobTimeout bounds a single relayed send.
const DefaultJobTimeout = 30 * time.Second

// RelayOption customizes Relay.
type RelayOption func(*relayConfig)

type relayConfig struct {
	jobTimeout time.Duration
}

// WithJobTimeout bounds each send handed to the downstream notifier.
func WithJobTimeout(d time.Duration) RelayOption {
	return func(c *relayConfig) {
		if d > 0 {
			c.jobTimeout = d
		}
	}
}

// Relay drains deliveries and hands each job to next until ctx is done or
// the channel closes. Jobs that fail to decode are rejected; send failures
// are requeued once. Each send runs under its own timeout.
func Relay(ctx context.Context, deliveries <-chan amqp.Delivery, next auth.Notifier, logger auth.Logger, opts ...RelayOption) error {
	if logger == nil {
		logger = auth.NewSlogLogger(nil)
	}
	cfg := relayConfig{jobTimeout: DefaultJobTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}

			var n auth.Notification
			if err := json.Unmarshal(d.Body, &n); err != nil {
				logger.Error("relay: malformed job", "error", err)
				if err := d.Reject(false); err != nil {
					logger.Warn("relay: reject failed", "delivery_tag", d.DeliveryTag, "error", err)
				}
				continue
			}

			if err := relaySend(ctx, next, n, cfg.jobTimeout); err != nil {
				logger.Error("relay: send failed", "to", n.To, "redelivered", d.Redelivered, "error", err)
				if err := d.Nack(false, !d.Redelivered); err != nil {
					logger.Warn("relay: nack failed", "delivery_tag", d.DeliveryTag, "error", err)
				}
				continue
			}

			if err := d.Ack(false); err != nil {
				logger.Warn("relay: ack failed", "delivery_tag", d.DeliveryTag, "error", err)
			}
		}
	}
}

func relaySend(ctx context.Context, next auth.Notifier, n auth.Notification, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return next.Send(ctx, n)
}
