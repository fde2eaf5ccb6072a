package activitymap

import (
	"strings"
	"time"

	"github.com/goliatone/go-authgate"
)

const (
	// MetadataKeyActorType stores who triggered the event: admin, self or anonymous.
	MetadataKeyActorType = "actor_type"
)

const (
	ActorTypeAdmin     = "admin"
	ActorTypeSelf      = "self"
	ActorTypeAnonymous = "anonymous"
)

const (
	defaultChannel    = "authgate"
	defaultObjectType = "account"
	defaultActorID    = "anonymous"
)

// Normalized is a transport-agnostic activity shape for downstream systems.
type Normalized struct {
	ActorID    string         `json:"actor_id"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type,omitempty"`
	ObjectID   string         `json:"object_id,omitempty"`
	Channel    string         `json:"channel,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Option customizes normalization behavior.
type Option func(*normalizeOptions)

type normalizeOptions struct {
	channel       string
	objectType    string
	actorFallback string
}

// Normalize converts an authgate.ActivityEvent into a generic normalized shape.
// Self service events use the account as actor.
func Normalize(event authgate.ActivityEvent, opts ...Option) Normalized {
	options := defaultNormalizeOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	actorID := firstNonEmpty(
		strings.TrimSpace(event.ActorID),
		strings.TrimSpace(event.AccountID),
		options.actorFallback,
	)

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	return Normalized{
		ActorID:    actorID,
		Verb:       string(event.EventType),
		ObjectType: options.objectType,
		ObjectID:   strings.TrimSpace(event.AccountID),
		Channel:    options.channel,
		Metadata:   normalizeMetadata(event),
		OccurredAt: occurredAt,
	}
}

// WithDefaultChannel sets the default channel for normalized records.
func WithDefaultChannel(channel string) Option {
	return func(opts *normalizeOptions) {
		opts.channel = strings.TrimSpace(channel)
	}
}

// WithDefaultObjectType sets the default object type for normalized records.
func WithDefaultObjectType(objectType string) Option {
	return func(opts *normalizeOptions) {
		opts.objectType = strings.TrimSpace(objectType)
	}
}

// WithActorFallback sets the actor id used when the event has neither actor nor account.
func WithActorFallback(actorID string) Option {
	return func(opts *normalizeOptions) {
		opts.actorFallback = strings.TrimSpace(actorID)
	}
}

// Fields flattens n for structured loggers. Metadata keys never
// override the fixed keys.
func (n Normalized) Fields() map[string]any {
	out := make(map[string]any, len(n.Metadata)+6)
	for k, v := range n.Metadata {
		out[k] = v
	}
	out["actor_id"] = n.ActorID
	out["verb"] = n.Verb
	out["object_type"] = n.ObjectType
	out["object_id"] = n.ObjectID
	out["channel"] = n.Channel
	out["occurred_at"] = n.OccurredAt
	return out
}

func defaultNormalizeOptions() normalizeOptions {
	return normalizeOptions{
		channel:       defaultChannel,
		objectType:    defaultObjectType,
		actorFallback: defaultActorID,
	}
}

func normalizeMetadata(event authgate.ActivityEvent) map[string]any {
	metadata := cloneMap(event.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	if _, exists := metadata[MetadataKeyActorType]; !exists {
		metadata[MetadataKeyActorType] = actorType(event)
	}
	return metadata
}

func actorType(event authgate.ActivityEvent) string {
	switch {
	case strings.TrimSpace(event.ActorID) != "":
		return ActorTypeAdmin
	case strings.TrimSpace(event.AccountID) != "":
		return ActorTypeSelf
	default:
		return ActorTypeAnonymous
	}
}

func cloneMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
