package activitymap

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	auth "github.com/goliatone/go-loan-auth"
	"github.com/goliatone/go-loan-auth/notifier"
)

// DefaultQueue receives published audit entries.
const DefaultQueue = "auth.activity"

// LogSink writes each event as a structured "activity" log line.
type LogSink struct {
	logger auth.Logger
	opts   []Option
}

var _ auth.ActivitySink = (*LogSink)(nil)

func NewLogSink(logger auth.Logger, opts ...Option) *LogSink {
	if logger == nil {
		logger = auth.NewSlogLogger(nil)
	}
	return &LogSink{logger: logger, opts: opts}
}

func (s *LogSink) Record(_ context.Context, event auth.ActivityEvent) error {
	e := FromEvent(event, s.opts...)
	args := []any{
		"verb", e.Verb,
		"actor_id", e.ActorID,
		"subject_id", e.SubjectID,
		"channel", e.Channel,
		"occurred_at", e.OccurredAt,
	}
	for k, v := range e.Metadata {
		args = append(args, "meta."+k, v)
	}
	s.logger.Info("activity", args...)
	return nil
}

// PublishSink publishes entries as persistent JSON messages.
type PublishSink struct {
	publisher notifier.Publisher
	queue     string
	opts      []Option
}

var _ auth.ActivitySink = (*PublishSink)(nil)

func NewPublishSink(publisher notifier.Publisher, queue string, opts ...Option) *PublishSink {
	if queue == "" {
		queue = DefaultQueue
	}
	return &PublishSink{publisher: publisher, queue: queue, opts: opts}
}

func (s *PublishSink) Record(ctx context.Context, event auth.ActivityEvent) error {
	body, err := json.Marshal(FromEvent(event, s.opts...))
	if err != nil {
		return fmt.Errorf("activitymap: encode entry: %w", err)
	}

	err = s.publisher.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         string(event.EventType),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("activitymap: publish to %s: %w", s.queue, err)
	}
	return nil
}
