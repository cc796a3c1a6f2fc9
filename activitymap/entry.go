// Package activitymap flattens auth activity events into audit entries
// and ships them to a log or a queue.
package activitymap

import (
	"strings"
	"time"

	auth "github.com/goliatone/go-loan-auth"
)

const (
	MetadataKeyActorType  = "actor_type"
	MetadataKeyFromStatus = "from_status"
	MetadataKeyToStatus   = "to_status"
)

const (
	defaultChannel = "auth"
	defaultSubject = "user"
	systemActor    = "system"
)

// Entry is the audit record derived from an auth.ActivityEvent.
type Entry struct {
	ActorID    string         `json:"actorId"`
	Verb       string         `json:"verb"`
	Subject    string         `json:"subject,omitempty"`
	SubjectID  string         `json:"subjectId,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Option customizes how entries are built.
type Option func(*entryOptions)

type entryOptions struct {
	channel string
	subject string
	now     func() time.Time
}

// WithChannel sets the channel stamped on every entry.
func WithChannel(channel string) Option {
	return func(o *entryOptions) {
		o.channel = strings.TrimSpace(channel)
	}
}

// WithSubject sets the subject type, "user" by default.
func WithSubject(subject string) Option {
	return func(o *entryOptions) {
		o.subject = strings.TrimSpace(subject)
	}
}

// WithClock is used when an event has no OccurredAt.
func WithClock(now func() time.Time) Option {
	return func(o *entryOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) entryOptions {
	o := entryOptions{channel: defaultChannel, subject: defaultSubject, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// FromEvent converts event into an Entry. The actor falls back to the
// affected user and then to "system".
func FromEvent(event auth.ActivityEvent, opts ...Option) Entry {
	o := buildOptions(opts)

	actor := strings.TrimSpace(event.Actor.ID)
	if actor == "" {
		actor = strings.TrimSpace(event.UserID)
	}
	if actor == "" {
		actor = systemActor
	}

	at := event.OccurredAt
	if at.IsZero() {
		at = o.now()
	}

	return Entry{
		ActorID:    actor,
		Verb:       string(event.EventType),
		Subject:    o.subject,
		SubjectID:  strings.TrimSpace(event.UserID),
		Channel:    o.channel,
		Metadata:   entryMetadata(event),
		OccurredAt: at.UTC(),
	}
}

func entryMetadata(event auth.ActivityEvent) map[string]any {
	out := make(map[string]any, len(event.Metadata)+3)
	for k, v := range event.Metadata {
		out[k] = v
	}
	if t := strings.TrimSpace(event.Actor.Type); t != "" {
		if _, ok := out[MetadataKeyActorType]; !ok {
			out[MetadataKeyActorType] = t
		}
	}
	if event.FromStatus != "" {
		out[MetadataKeyFromStatus] = string(event.FromStatus)
	}
	if event.ToStatus != "" {
		out[MetadataKeyToStatus] = string(event.ToStatus)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
