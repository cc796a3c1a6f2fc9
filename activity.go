package auth

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventUserRegistered      ActivityEventType = "auth.user.registered"
	ActivityEventRegistrationFailure ActivityEventType = "auth.user.registration_failed"
	ActivityEventUserStatusChanged   ActivityEventType = "user.status.changed"
	ActivityEventLoginSuccess        ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure        ActivityEventType = "auth.login.failure"
	ActivityEventLogout              ActivityEventType = "auth.logout"
	ActivityEventProfileUpdated      ActivityEventType = "auth.profile.updated"
	ActivityEventPasswordActivated   ActivityEventType = "auth.password.activated"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	Actor      ActorRef
	UserID     string
	FromStatus UserStatus
	ToStatus   UserStatus
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// MultiActivitySink fans an event out to every sink, returning the first error.
type MultiActivitySink []ActivitySink

// Record implements ActivitySink.
func (m MultiActivitySink) Record(ctx context.Context, event ActivityEvent) error {
	var first error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

func recordActivity(ctx context.Context, sink ActivitySink, logger Logger, now func() time.Time, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = now()
	}
	if err := sink.Record(ctx, event); err != nil {
		logger.Warn("activity sink failed", "event", event.EventType, "error", err)
	}
}
