package activitymap_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-authgate"
	"github.com/goliatone/go-authgate/activitymap"
)

func TestNormalizeAdminEvent(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
	event := authgate.ActivityEvent{
		EventType: authgate.ActivityEventAccountRoleChanged,
		ActorID:   "admin-42",
		AccountID: "user-100",
		Metadata: map[string]any{
			"role": "ADMIN",
		},
		OccurredAt: ts,
	}

	out := activitymap.Normalize(event)

	if out.ActorID != "admin-42" {
		t.Fatalf("expected actor_id admin-42, got %q", out.ActorID)
	}
	if out.Verb != string(authgate.ActivityEventAccountRoleChanged) {
		t.Fatalf("expected verb %q, got %q", authgate.ActivityEventAccountRoleChanged, out.Verb)
	}
	if out.ObjectType != "account" {
		t.Fatalf("expected object_type account, got %q", out.ObjectType)
	}
	if out.ObjectID != "user-100" {
		t.Fatalf("expected object_id user-100, got %q", out.ObjectID)
	}
	if out.Channel != "authgate" {
		t.Fatalf("expected channel authgate, got %q", out.Channel)
	}
	if !out.OccurredAt.Equal(ts) {
		t.Fatalf("expected occurred_at %v, got %v", ts, out.OccurredAt)
	}
	if out.Metadata["role"] != "ADMIN" {
		t.Fatalf("expected metadata role ADMIN, got %#v", out.Metadata["role"])
	}
	if out.Metadata[activitymap.MetadataKeyActorType] != activitymap.ActorTypeAdmin {
		t.Fatalf("expected metadata actor_type admin, got %#v", out.Metadata[activitymap.MetadataKeyActorType])
	}
	if len(event.Metadata) != 1 {
		t.Fatalf("expected source metadata to remain unchanged, got %+v", event.Metadata)
	}
}

func TestNormalizeOptionOverrides(t *testing.T) {
	t.Parallel()

	event := authgate.ActivityEvent{
		EventType: authgate.ActivityEventLoginFailure,
		AccountID: "user-200",
		Metadata: map[string]any{
			"reason":                         "password_mismatch",
			activitymap.MetadataKeyActorType: "existing",
		},
	}

	out := activitymap.Normalize(
		event,
		activitymap.WithDefaultChannel("security"),
		activitymap.WithDefaultObjectType("user"),
	)

	if out.Channel != "security" {
		t.Fatalf("expected channel security, got %q", out.Channel)
	}
	if out.ObjectType != "user" {
		t.Fatalf("expected object_type user, got %q", out.ObjectType)
	}
	if out.Metadata[activitymap.MetadataKeyActorType] != "existing" {
		t.Fatalf("expected existing actor_type preserved, got %#v", out.Metadata[activitymap.MetadataKeyActorType])
	}
	if out.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be set when input is zero")
	}
}

func TestNormalizeActorFallbackChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		event     authgate.ActivityEvent
		opts      []activitymap.Option
		expect    string
		actorType string
	}{
		{
			name:      "uses actor id when present",
			event:     authgate.ActivityEvent{ActorID: "actor-1", AccountID: "user-1"},
			expect:    "actor-1",
			actorType: activitymap.ActorTypeAdmin,
		},
		{
			name:      "uses account id for self service events",
			event:     authgate.ActivityEvent{AccountID: "user-2"},
			expect:    "user-2",
			actorType: activitymap.ActorTypeSelf,
		},
		{
			name:      "uses default fallback when actor and account missing",
			event:     authgate.ActivityEvent{},
			expect:    "anonymous",
			actorType: activitymap.ActorTypeAnonymous,
		},
		{
			name:      "uses configured fallback when actor and account missing",
			event:     authgate.ActivityEvent{},
			opts:      []activitymap.Option{activitymap.WithActorFallback("job")},
			expect:    "job",
			actorType: activitymap.ActorTypeAnonymous,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			out := activitymap.Normalize(tc.event, tc.opts...)
			if out.ActorID != tc.expect {
				t.Fatalf("expected actor_id %q, got %q", tc.expect, out.ActorID)
			}
			if out.Metadata[activitymap.MetadataKeyActorType] != tc.actorType {
				t.Fatalf("expected actor_type %q, got %#v", tc.actorType, out.Metadata[activitymap.MetadataKeyActorType])
			}
		})
	}
}

func TestNormalizedFields(t *testing.T) {
	t.Parallel()

	out := activitymap.Normalize(authgate.ActivityEvent{
		EventType: authgate.ActivityEventAccountDeleted,
		ActorID:   "admin-1",
		AccountID: "user-1",
		Metadata:  map[string]any{"verb": "spoofed", "extra": 1},
	})

	fields := out.Fields()
	if fields["verb"] != string(authgate.ActivityEventAccountDeleted) {
		t.Fatalf("expected metadata not to override verb, got %#v", fields["verb"])
	}
	if fields["extra"] != 1 {
		t.Fatalf("expected metadata extra to be kept, got %#v", fields["extra"])
	}
	if fields["object_id"] != "user-1" {
		t.Fatalf("expected object_id user-1, got %#v", fields["object_id"])
	}
}
